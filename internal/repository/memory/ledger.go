package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/afritokeni/ussd-engine/internal/model"
)

var (
	_ model.UserDirectory  = (*Ledger)(nil)
	_ model.Wallet         = (*Ledger)(nil)
	_ model.AgentDirectory = (*Ledger)(nil)
	_ model.RequestStore   = (*Ledger)(nil)
)

type account struct {
	user    model.User
	pinHash []byte
}

// Ledger keeps users, balances, agents and agent requests in memory.
type Ledger struct {
	mu           sync.RWMutex
	accounts     map[string]*account
	balances     map[string]map[string]int64
	transactions []model.Transaction
	agents       []model.Agent
	requests     map[string]model.CashRequest
	now          func() time.Time
}

// NewLedger creates new Ledger instance.
func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[string]*account),
		balances: make(map[string]map[string]int64),
		requests: make(map[string]model.CashRequest),
		now:      time.Now,
	}
}

// FindByPhone returns the user registered under phone.
func (l *Ledger) FindByPhone(_ context.Context, phone string) (model.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.accounts[phone]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return acc.user, nil
}

// Register adds a user.
func (l *Ledger) Register(_ context.Context, user model.User) (model.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[user.Phone]; ok {
		return model.User{}, model.ErrUserExists
	}

	now := l.now()
	user.ID = uuid.New()
	user.HasPIN = false
	user.CreatedAt = now
	user.UpdatedAt = now
	l.accounts[user.Phone] = &account{user: user}

	return user, nil
}

// VerifyPIN compares pin with the stored hash.
func (l *Ledger) VerifyPIN(_ context.Context, phone, pin string) (bool, error) {
	l.mu.RLock()
	acc, ok := l.accounts[phone]
	var hash []byte
	if ok {
		hash = acc.pinHash
	}
	l.mu.RUnlock()

	if !ok {
		return false, model.ErrNotFound
	}
	if hash == nil {
		return false, nil
	}

	return bcrypt.CompareHashAndPassword(hash, []byte(pin)) == nil, nil
}

// SetPIN stores a hash of pin.
func (l *Ledger) SetPIN(_ context.Context, phone, pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[phone]
	if !ok {
		return model.ErrNotFound
	}
	acc.pinHash = hash
	acc.user.HasPIN = true
	acc.user.UpdatedAt = l.now()

	return nil
}

// SetLanguage records the user's language preference.
func (l *Ledger) SetLanguage(_ context.Context, phone string, language model.Language) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[phone]
	if !ok {
		return model.ErrNotFound
	}
	acc.user.Language = language
	acc.user.UpdatedAt = l.now()

	return nil
}

// Balance returns the amount of asset held by phone.
func (l *Ledger) Balance(_ context.Context, phone, asset string) (model.Balance, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return model.Balance{Amount: l.balances[phone][asset], Currency: asset}, nil
}

// UpdateBalance sets the amount of asset held by phone.
func (l *Ledger) UpdateBalance(_ context.Context, phone, asset string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("negative balance %d", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.setBalance(phone, asset, amount)
	return nil
}

func (l *Ledger) setBalance(phone, asset string, amount int64) {
	if l.balances[phone] == nil {
		l.balances[phone] = make(map[string]int64)
	}
	l.balances[phone][asset] = amount
}

// Transfer debits amount plus fee from the sender and credits amount to the
// recipient in one step.
func (l *Ledger) Transfer(_ context.Context, req model.TransferRequest) (model.TransferResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if req.Amount <= 0 || req.Fee < 0 {
		return model.TransferResult{Error: "Invalid amount"}, nil
	}
	if req.Sender == req.Recipient {
		return model.TransferResult{Error: "Cannot send to yourself"}, nil
	}
	if _, ok := l.accounts[req.Recipient]; !ok {
		return model.TransferResult{Error: "Recipient not found"}, nil
	}

	available := l.balances[req.Sender][req.Asset]
	if available < req.Amount+req.Fee {
		return model.TransferResult{Error: "Insufficient balance"}, nil
	}

	l.setBalance(req.Sender, req.Asset, available-req.Amount-req.Fee)
	l.setBalance(req.Recipient, req.Asset, l.balances[req.Recipient][req.Asset]+req.Amount)

	tx := model.Transaction{
		ID:        uuid.NewString(),
		Kind:      req.Kind,
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Asset:     req.Asset,
		Amount:    req.Amount,
		Fee:       req.Fee,
		CreatedAt: l.now(),
	}
	l.transactions = append(l.transactions, tx)

	return model.TransferResult{Success: true, TransactionID: tx.ID}, nil
}

// RecentTransactions returns up to limit transactions involving phone, newest first.
func (l *Ledger) RecentTransactions(_ context.Context, phone string, limit int) ([]model.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []model.Transaction
	for _, tx := range slices.Backward(l.transactions) {
		if len(out) == limit {
			break
		}
		if tx.Sender == phone || tx.Recipient == phone {
			out = append(out, tx)
		}
	}

	return out, nil
}

// AddAgent registers a cash agent.
func (l *Ledger) AddAgent(agent model.Agent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.agents = append(l.agents, agent)
}

// ListAvailable returns up to limit agents.
func (l *Ledger) ListAvailable(_ context.Context, limit int) ([]model.Agent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := min(limit, len(l.agents))
	if limit <= 0 {
		n = len(l.agents)
	}
	return slices.Clone(l.agents[:n]), nil
}

// CreatePending records an agent request under its code.
func (l *Ledger) CreatePending(_ context.Context, req model.CashRequest) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.requests[req.Code]; ok {
		return "", fmt.Errorf("request %s already exists", req.Code)
	}
	l.requests[req.Code] = req

	return uuid.NewString(), nil
}

// PendingRequests returns the recorded agent requests.
func (l *Ledger) PendingRequests() []model.CashRequest {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.CashRequest, 0, len(l.requests))
	for _, req := range l.requests {
		out = append(out, req)
	}
	return out
}
