package model

import (
	"context"
	"time"
)

// AgentDirectory lists cash agents.
type AgentDirectory interface {
	ListAvailable(ctx context.Context, limit int) ([]Agent, error)
}

// Agent is a cash-in/cash-out point.
type Agent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Phone    string `json:"phone,omitempty"`
}

// RequestStore records agent-mediated requests awaiting the agent.
type RequestStore interface {
	CreatePending(ctx context.Context, req CashRequest) (string, error)
}

// RequestKind enumerates agent-mediated request kinds.
type RequestKind string

const (
	RequestDeposit  RequestKind = "deposit"
	RequestWithdraw RequestKind = "withdraw"
	RequestBuy      RequestKind = "buy"
	RequestSell     RequestKind = "sell"
)

// CashRequest is a pending request the subscriber completes in front of an agent.
// Amount and Fee are local currency; AssetAmount is set for buy and sell.
type CashRequest struct {
	Kind        RequestKind
	Code        string
	Phone       string
	AgentID     string
	Currency    string
	Amount      int64
	Fee         int64
	Asset       string
	AssetAmount int64
	ExpiresAt   time.Time
}
