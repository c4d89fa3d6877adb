package model

import (
	"context"
	"io"
	"time"
)

// Storage is an object store.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ReceiptArchive keeps a copy of every completed operation.
type ReceiptArchive interface {
	Archive(ctx context.Context, receipt Receipt) error
}

// Receipt describes a completed operation.
type Receipt struct {
	Reference    string    `json:"reference"`
	Kind         string    `json:"kind"`
	Phone        string    `json:"phone"`
	Counterparty string    `json:"counterparty,omitempty"`
	Asset        string    `json:"asset"`
	Amount       int64     `json:"amount"`
	Fee          int64     `json:"fee"`
	CreatedAt    time.Time `json:"created_at"`
}
