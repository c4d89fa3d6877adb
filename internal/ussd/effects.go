package ussd

import (
	"context"
	"errors"
	"fmt"

	"github.com/afritokeni/ussd-engine/internal/model"
)

// notify sends an SMS without letting a delivery failure affect the reply.
func (e *Engine) notify(ctx context.Context, destination, message string) {
	if destination == "" {
		return
	}
	if err := e.deps.Notifier.Send(ctx, destination, message); err != nil {
		e.logger.Warn("USSD engine: failed to send notification", "destination", destination, "error", err)
	}
}

func (e *Engine) archive(ctx context.Context, receipt model.Receipt) {
	if e.deps.Receipts == nil {
		return
	}
	if err := e.deps.Receipts.Archive(ctx, receipt); err != nil {
		e.logger.Warn("USSD engine: failed to archive receipt", "reference", receipt.Reference, "error", err)
	}
}

// balance returns the amount of asset held by phone. An unknown wallet holds nothing.
func (e *Engine) balance(ctx context.Context, phone, asset string) (int64, error) {
	bal, err := e.deps.Wallet.Balance(ctx, phone, asset)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get %s balance: %w", asset, err)
	}
	return bal.Amount, nil
}
