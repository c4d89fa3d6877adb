package ussd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/afritokeni/ussd-engine/internal/mocks"
	"github.com/afritokeni/ussd-engine/internal/model"
	"github.com/afritokeni/ussd-engine/internal/repository/memory"
)

func TestCrypto_Rate(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)

	resp := h.walk(dialCode, "2", "2")
	assert.False(t, resp.Continue)
	assert.Equal(t, "Bitcoin (ckBTC) Exchange Rate\n1 ckBTC = UGX 150,000,000\nUpdated: 15 Oct 2026 09:00 UTC\nSource: tariff", resp.Text)
}

func TestCrypto_RateFailure(t *testing.T) {
	rates := mocks.NewRateProvider(t)
	rates.On("Rate", mock.Anything, model.AssetUSDC, "UGX").Return(model.ExchangeRate{}, errors.New("upstream down"))

	h := newHarness(t, func(_ *Config, deps *Collaborators) {
		deps.Rates = rates
	})
	h.register(subscriber, 0)

	resp := h.walk(dialCode, "3", "2")
	assert.False(t, resp.Continue)
	assert.Equal(t, msgGenericError, resp.Text)
}

func TestCrypto_Balance(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)
	h.fund(subscriber, model.AssetBTC, 150_000)

	resp := h.walk(dialCode, "2", "1")
	assert.True(t, resp.Continue)
	assert.Equal(t, "ckBTC Balance\n"+promptPIN, resp.Text)

	resp = h.send(testPIN)
	assert.False(t, resp.Continue)
	assert.Equal(t, "ckBTC Balance\n0.00150000 ckBTC\n≈ UGX 225,000", resp.Text)
}

func TestCrypto_Buy(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)
	h.addAgents()

	resp := h.walk(dialCode, "2", "3", "100000")
	assert.True(t, resp.Continue)
	assert.Contains(t, resp.Text, "Buy 0.00065000 ckBTC\nYou pay: UGX 100,000\nFee: UGX 2,500\n"+promptAgent)

	resp = h.send("1")
	assert.True(t, resp.Continue)
	assert.Contains(t, resp.Text, "Agent: Kampala Central\n"+promptConfirmPIN)

	resp = h.send(testPIN)
	assert.False(t, resp.Continue)
	assert.Regexp(t, `Code: BUY-[A-Z0-9]{6}\n`, resp.Text)
	assert.Contains(t, resp.Text, "Pay UGX 100,000 to Kampala Central, Kampala Road\nYou receive: 0.00065000 ckBTC")

	requests := h.ledger.PendingRequests()
	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, model.RequestBuy, req.Kind)
	assert.Equal(t, model.AssetBTC, req.Asset)
	assert.Equal(t, int64(65_000), req.AssetAmount)
	assert.Equal(t, int64(100_000), req.Amount)
	assert.Equal(t, int64(2_500), req.Fee)
}

func TestCrypto_Sell(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)
	h.fund(subscriber, model.AssetUSDC, 10_000)
	h.addAgents()

	resp := h.walk(dialCode, "3", "4", "10")
	assert.True(t, resp.Continue)
	assert.Contains(t, resp.Text, "Sell 10.00 ckUSDC\nYou receive: UGX 36,075\nFee: UGX 925")

	resp = h.walk("2", testPIN)
	assert.False(t, resp.Continue)
	assert.Regexp(t, `Code: SELL-[A-Z0-9]{6}\n`, resp.Text)
	assert.Contains(t, resp.Text, "Collect UGX 36,075 from Ntinda Shop, Ntinda")

	requests := h.ledger.PendingRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, model.RequestSell, requests[0].Kind)
	assert.Equal(t, int64(1_000), requests[0].AssetAmount)
}

func TestCrypto_SellMoreThanHeld(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)
	h.fund(subscriber, model.AssetUSDC, 10_000)
	h.addAgents()

	resp := h.walk(dialCode, "3", "4", "200")
	assert.False(t, resp.Continue)
	assert.Equal(t, "Insufficient balance. Available: 100.00 ckUSDC", resp.Text)
	assert.Empty(t, h.ledger.PendingRequests())
}

func TestCrypto_Send(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)
	h.register(friend, 0)
	h.fund(subscriber, model.AssetUSDC, 10_000)

	resp := h.walk(dialCode, "3", "5", "0700000002", "25.5")
	assert.True(t, resp.Continue)
	assert.Equal(t, "Send 25.50 ckUSDC to 256700000002\nNetwork fee: 0.01 ckUSDC\n"+promptConfirmPIN, resp.Text)

	resp = h.send(testPIN)
	assert.False(t, resp.Continue)
	assert.Contains(t, resp.Text, "Sent 25.50 ckUSDC to 256700000002.")

	assert.Equal(t, int64(7_449), h.balance(subscriber, model.AssetUSDC))
	assert.Equal(t, int64(2_550), h.balance(friend, model.AssetUSDC))
}

func TestCrypto_SendToUnknownRecipient(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)
	h.fund(subscriber, model.AssetBTC, 100_000)

	resp := h.walk(dialCode, "2", "5", "0700000009")
	assert.False(t, resp.Continue)
	assert.Equal(t, "Recipient 256700000009 is not registered with AfriTokeni.", resp.Text)
}

func TestCrypto_SendInsufficientWithNetworkFee(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)
	h.register(friend, 0)
	h.fund(subscriber, model.AssetBTC, 100_000)

	// 0.001 BTC is exactly the balance, the network fee tips it over.
	resp := h.walk(dialCode, "2", "5", "0700000002", "0.001")
	assert.False(t, resp.Continue)
	assert.Equal(t, "Insufficient balance. Available: 0.00100000 ckBTC", resp.Text)
	assert.Equal(t, int64(100_000), h.balance(subscriber, model.AssetBTC))
}

// unreachablePINs fails every PIN verification.
type unreachablePINs struct {
	*memory.Ledger
}

func (unreachablePINs) VerifyPIN(context.Context, string, string) (bool, error) {
	return false, errors.New("verification service unreachable")
}

func TestCrypto_DemoPIN(t *testing.T) {
	tests := []struct {
		name     string
		demoMode bool
		wantSent bool
	}{
		{name: "demo mode", demoMode: true, wantSent: true},
		{name: "production", demoMode: false, wantSent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(cfg *Config, deps *Collaborators) {
				cfg.DemoMode = tt.demoMode
				deps.Users = unreachablePINs{Ledger: deps.Wallet.(*memory.Ledger)}
			})
			h.register(subscriber, 0)
			h.register(friend, 0)
			h.fund(subscriber, model.AssetBTC, 100_000)

			resp := h.walk(dialCode, "2", "5", "0700000002", "0.0001", demoPIN)
			if tt.wantSent {
				assert.False(t, resp.Continue)
				assert.Contains(t, resp.Text, "Sent 0.00010000 ckBTC")
				assert.Equal(t, int64(89_990), h.balance(subscriber, model.AssetBTC))
				return
			}
			assert.True(t, resp.Continue)
			assert.Contains(t, resp.Text, msgPINIncorrect)
			assert.Equal(t, int64(100_000), h.balance(subscriber, model.AssetBTC))
		})
	}
}

func TestCrypto_CancelReturnsToAssetMenu(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)

	resp := h.walk(dialCode, "2", "4", "0")
	assert.True(t, resp.Continue)
	assert.Contains(t, resp.Text, bitcoin.title+"\n1. Check Balance")
	assert.Equal(t, model.MenuBitcoin, h.session().Menu)
}
