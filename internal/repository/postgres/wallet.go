package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/afritokeni/ussd-engine/internal/model"
)

var _ model.Wallet = (*WalletRepository)(nil)

type WalletRepository struct {
	db *Connection
}

func NewWalletRepository(db *Connection) *WalletRepository {
	return &WalletRepository{
		db: db,
	}
}

func (r *WalletRepository) Balance(ctx context.Context, phone, asset string) (model.Balance, error) {
	var amount int64
	err := r.db.QueryRow(ctx, `SELECT amount FROM balances WHERE phone = $1 AND asset = $2`, phone, asset).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Balance{Currency: asset}, nil
		}
		return model.Balance{}, fmt.Errorf("failed to get balance: %w", err)
	}

	return model.Balance{Amount: amount, Currency: asset}, nil
}

func (r *WalletRepository) UpdateBalance(ctx context.Context, phone, asset string, amount int64) error {
	query := `INSERT INTO balances (phone, asset, amount) VALUES ($1, $2, $3)
			  ON CONFLICT (phone, asset) DO UPDATE SET amount = EXCLUDED.amount, updated_at = now()`

	if _, err := r.db.Exec(ctx, query, phone, asset, amount); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}

// Transfer moves money between two balances in one transaction. Both rows
// are locked in phone order so concurrent transfers cannot deadlock.
func (r *WalletRepository) Transfer(ctx context.Context, req model.TransferRequest) (model.TransferResult, error) {
	if req.Amount <= 0 || req.Fee < 0 {
		return model.TransferResult{Error: "Invalid amount"}, nil
	}
	if req.Sender == req.Recipient {
		return model.TransferResult{Error: "Cannot send to yourself"}, nil
	}

	var result model.TransferResult
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		var registered bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE phone = $1)`, req.Recipient).Scan(&registered); err != nil {
			return fmt.Errorf("failed to look up recipient: %w", err)
		}
		if !registered {
			result = model.TransferResult{Error: "Recipient not found"}
			return nil
		}

		if _, err := tx.Exec(ctx, `INSERT INTO balances (phone, asset, amount) VALUES ($1, $3, 0), ($2, $3, 0)
				  ON CONFLICT (phone, asset) DO NOTHING`, req.Sender, req.Recipient, req.Asset); err != nil {
			return fmt.Errorf("failed to prepare balances: %w", err)
		}

		rows, err := tx.Query(ctx, `SELECT phone, amount FROM balances
				  WHERE asset = $1 AND phone IN ($2, $3) ORDER BY phone FOR UPDATE`, req.Asset, req.Sender, req.Recipient)
		if err != nil {
			return fmt.Errorf("failed to lock balances: %w", err)
		}
		balances := make(map[string]int64, 2)
		for rows.Next() {
			var (
				phone  string
				amount int64
			)
			if err := rows.Scan(&phone, &amount); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan balance: %w", err)
			}
			balances[phone] = amount
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to read balances: %w", err)
		}

		if balances[req.Sender] < req.Amount+req.Fee {
			result = model.TransferResult{Error: "Insufficient balance"}
			return nil
		}

		update := `UPDATE balances SET amount = amount + $3, updated_at = now() WHERE phone = $1 AND asset = $2`
		if _, err := tx.Exec(ctx, update, req.Sender, req.Asset, -(req.Amount + req.Fee)); err != nil {
			return fmt.Errorf("failed to debit sender: %w", err)
		}
		if _, err := tx.Exec(ctx, update, req.Recipient, req.Asset, req.Amount); err != nil {
			return fmt.Errorf("failed to credit recipient: %w", err)
		}

		id := uuid.New()
		if _, err := tx.Exec(ctx, `INSERT INTO transactions (id, kind, sender, recipient, asset, amount, fee)
				  VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, string(req.Kind), req.Sender, req.Recipient, req.Asset, req.Amount, req.Fee); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		result = model.TransferResult{Success: true, TransactionID: id.String()}
		return nil
	})
	if err != nil {
		return model.TransferResult{}, fmt.Errorf("failed to transfer: %w", err)
	}

	return result, nil
}

func (r *WalletRepository) RecentTransactions(ctx context.Context, phone string, limit int) ([]model.Transaction, error) {
	query := `SELECT id, kind, sender, recipient, asset, amount, fee, created_at
			  FROM transactions WHERE sender = $1 OR recipient = $1
			  ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, phone, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		var (
			tx   model.Transaction
			id   uuid.UUID
			kind string
		)
		if err := rows.Scan(&id, &kind, &tx.Sender, &tx.Recipient, &tx.Asset, &tx.Amount, &tx.Fee, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.ID = id.String()
		tx.Kind = model.TransactionKind(kind)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}
