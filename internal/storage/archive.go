// Package storage archives receipts of completed operations in an object store.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/afritokeni/ussd-engine/internal/logger"
	"github.com/afritokeni/ussd-engine/internal/model"
)

const receiptContentType = "application/json"

var _ model.ReceiptArchive = (*Archive)(nil)

type Archive struct {
	storage model.Storage
	logger  *logger.Logger
}

func NewArchive(storage model.Storage, logger *logger.Logger) *Archive {
	return &Archive{
		storage: storage,
		logger:  logger,
	}
}

// ReceiptKey returns the object key for a receipt, partitioned by day.
func ReceiptKey(r model.Receipt) string {
	return fmt.Sprintf("receipts/%s/%s.json", r.CreatedAt.UTC().Format("2006/01/02"), r.Reference)
}

// Archive uploads the receipt once. Archiving the same reference again is a no-op.
func (a *Archive) Archive(ctx context.Context, receipt model.Receipt) error {
	if receipt.Reference == "" {
		return fmt.Errorf("failed to archive receipt: empty reference")
	}

	key := ReceiptKey(receipt)
	exists, err := a.storage.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check receipt: %w", err)
	}
	if exists {
		a.logger.Debug("Archive: receipt already stored", "key", key)
		return nil
	}

	payload, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("failed to encode receipt: %w", err)
	}

	if err := a.storage.Upload(ctx, key, bytes.NewReader(payload), int64(len(payload)), receiptContentType); err != nil {
		return fmt.Errorf("failed to upload receipt: %w", err)
	}

	a.logger.Debug("Archive: receipt stored", "key", key, "kind", receipt.Kind)
	return nil
}
