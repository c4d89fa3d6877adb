package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserDirectory looks up subscribers and manages their PINs.
type UserDirectory interface {
	FindByPhone(ctx context.Context, phone string) (User, error)
	Register(ctx context.Context, user User) (User, error)
	VerifyPIN(ctx context.Context, phone, pin string) (bool, error)
	SetPIN(ctx context.Context, phone, pin string) error
	SetLanguage(ctx context.Context, phone string, language Language) error
}

// User represents a registered subscriber.
type User struct {
	ID        uuid.UUID
	Phone     string
	FullName  string
	Currency  string
	Language  Language
	HasPIN    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
