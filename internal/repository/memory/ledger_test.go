package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afritokeni/ussd-engine/internal/model"
)

const (
	alice = "256700000001"
	bob   = "256700000002"
)

func newLedgerWithUsers(t *testing.T) *Ledger {
	t.Helper()
	ctx := context.Background()
	l := NewLedger()
	for _, phone := range []string{alice, bob} {
		_, err := l.Register(ctx, model.User{Phone: phone, FullName: "Test", Currency: "UGX"})
		require.NoError(t, err)
	}
	return l
}

func TestLedger_RegisterAndFind(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()

	_, err := l.FindByPhone(ctx, alice)
	assert.ErrorIs(t, err, model.ErrNotFound)

	user, err := l.Register(ctx, model.User{Phone: alice, FullName: "Alice", Currency: "UGX"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.HasPIN)

	_, err = l.Register(ctx, model.User{Phone: alice})
	assert.ErrorIs(t, err, model.ErrUserExists)

	got, err := l.FindByPhone(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FullName)
}

func TestLedger_PIN(t *testing.T) {
	ctx := context.Background()
	l := newLedgerWithUsers(t)

	ok, err := l.VerifyPIN(ctx, alice, "1234")
	require.NoError(t, err)
	assert.False(t, ok, "no PIN set yet")

	require.NoError(t, l.SetPIN(ctx, alice, "1234"))

	user, err := l.FindByPhone(ctx, alice)
	require.NoError(t, err)
	assert.True(t, user.HasPIN)

	tests := []struct {
		name string
		pin  string
		want bool
	}{
		{name: "correct", pin: "1234", want: true},
		{name: "wrong", pin: "4321", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := l.VerifyPIN(ctx, alice, tt.pin)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	_, err = l.VerifyPIN(ctx, "256799999999", "1234")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, l.SetPIN(ctx, "256799999999", "1234"), model.ErrNotFound)
}

func TestLedger_SetLanguage(t *testing.T) {
	ctx := context.Background()
	l := newLedgerWithUsers(t)

	require.NoError(t, l.SetLanguage(ctx, alice, model.LanguageSwahili))
	user, err := l.FindByPhone(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, model.LanguageSwahili, user.Language)
}

func TestLedger_Transfer(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		req         model.TransferRequest
		wantSuccess bool
		wantError   string
		wantAlice   int64
		wantBob     int64
	}{
		{
			name:        "success",
			req:         model.TransferRequest{Sender: alice, Recipient: bob, Asset: "UGX", Amount: 10_000, Fee: 100},
			wantSuccess: true,
			wantAlice:   89_900,
			wantBob:     10_000,
		},
		{
			name:      "insufficient",
			req:       model.TransferRequest{Sender: alice, Recipient: bob, Asset: "UGX", Amount: 100_000, Fee: 1_000},
			wantError: "Insufficient balance",
			wantAlice: 100_000,
		},
		{
			name:      "unknown recipient",
			req:       model.TransferRequest{Sender: alice, Recipient: "256799999999", Asset: "UGX", Amount: 10},
			wantError: "Recipient not found",
			wantAlice: 100_000,
		},
		{
			name:      "self",
			req:       model.TransferRequest{Sender: alice, Recipient: alice, Asset: "UGX", Amount: 10},
			wantError: "Cannot send to yourself",
			wantAlice: 100_000,
		},
		{
			name:      "zero amount",
			req:       model.TransferRequest{Sender: alice, Recipient: bob, Asset: "UGX"},
			wantError: "Invalid amount",
			wantAlice: 100_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedgerWithUsers(t)
			require.NoError(t, l.UpdateBalance(ctx, alice, "UGX", 100_000))

			res, err := l.Transfer(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, tt.wantError, res.Error)

			a, err := l.Balance(ctx, alice, "UGX")
			require.NoError(t, err)
			b, err := l.Balance(ctx, bob, "UGX")
			require.NoError(t, err)
			assert.Equal(t, tt.wantAlice, a.Amount)
			assert.Equal(t, tt.wantBob, b.Amount)

			txs, err := l.RecentTransactions(ctx, alice, 5)
			require.NoError(t, err)
			if tt.wantSuccess {
				require.Len(t, txs, 1)
				assert.Equal(t, res.TransactionID, txs[0].ID)
			} else {
				assert.Empty(t, txs)
			}
		})
	}
}

func TestLedger_RecentTransactionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	l := newLedgerWithUsers(t)
	require.NoError(t, l.UpdateBalance(ctx, alice, "UGX", 1_000))

	for _, amount := range []int64{1, 2, 3} {
		res, err := l.Transfer(ctx, model.TransferRequest{Sender: alice, Recipient: bob, Asset: "UGX", Amount: amount})
		require.NoError(t, err)
		require.True(t, res.Success)
	}

	txs, err := l.RecentTransactions(ctx, bob, 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(3), txs[0].Amount)
	assert.Equal(t, int64(2), txs[1].Amount)
}

func TestLedger_UpdateBalanceRejectsNegative(t *testing.T) {
	assert.Error(t, NewLedger().UpdateBalance(context.Background(), alice, "UGX", -1))
}

func TestLedger_Agents(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	for _, id := range []string{"a1", "a2", "a3"} {
		l.AddAgent(model.Agent{ID: id, Name: "Agent " + id})
	}

	agents, err := l.ListAvailable(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, agents, 2)

	agents, err = l.ListAvailable(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, agents, 3)
}

func TestLedger_CreatePending(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()

	id, err := l.CreatePending(ctx, model.CashRequest{Kind: model.RequestDeposit, Code: "DEP-AAAAAA"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = l.CreatePending(ctx, model.CashRequest{Kind: model.RequestDeposit, Code: "DEP-AAAAAA"})
	assert.Error(t, err)

	assert.Len(t, l.PendingRequests(), 1)
}
