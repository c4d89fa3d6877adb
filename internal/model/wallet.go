package model

import (
	"context"
	"time"
)

// Asset codes held in wallets.
const (
	AssetBTC  = "BTC"
	AssetUSDC = "USDC"
)

// Wallet exposes balances and money movement for a subscriber.
type Wallet interface {
	Balance(ctx context.Context, phone, asset string) (Balance, error)
	UpdateBalance(ctx context.Context, phone, asset string, amount int64) error
	Transfer(ctx context.Context, req TransferRequest) (TransferResult, error)
	RecentTransactions(ctx context.Context, phone string, limit int) ([]Transaction, error)
}

// Balance is an amount of an asset in its minor units.
type Balance struct {
	Amount   int64
	Currency string
}

// TransferRequest moves Amount from Sender to Recipient and charges Fee to Sender.
type TransferRequest struct {
	Sender    string
	Recipient string
	Asset     string
	Amount    int64
	Fee       int64
	Kind      TransactionKind
}

// TransferResult reports the business outcome of a transfer. Infrastructure
// failures are returned as errors instead.
type TransferResult struct {
	Success       bool
	TransactionID string
	Error         string
}

// TransactionKind classifies ledger entries.
type TransactionKind string

const (
	TransactionSend       TransactionKind = "send"
	TransactionCryptoSend TransactionKind = "crypto_send"
	TransactionDeposit    TransactionKind = "deposit"
	TransactionWithdraw   TransactionKind = "withdraw"
)

// Transaction is a completed ledger entry.
type Transaction struct {
	ID        string
	Kind      TransactionKind
	Sender    string
	Recipient string
	Asset     string
	Amount    int64
	Fee       int64
	CreatedAt time.Time
}
