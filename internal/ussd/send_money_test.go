package ussd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/afritokeni/ussd-engine/internal/mocks"
	"github.com/afritokeni/ussd-engine/internal/model"
)

func TestSendMoney(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 100_000)
	h.register(friend, 0)

	resp := h.walk(dialCode, "1", "1")
	assert.Equal(t, promptRecipient, resp.Text)

	resp = h.send("0700000002")
	assert.True(t, resp.Continue)
	assert.Equal(t, promptSendAmount("UGX"), resp.Text)

	resp = h.send("10000")
	assert.True(t, resp.Continue)
	assert.Equal(t, "Send UGX 10,000 to 256700000002\nFee: UGX 100\nTotal: UGX 10,100\n"+promptConfirmPIN, resp.Text)

	resp = h.send(testPIN)
	assert.False(t, resp.Continue)
	assert.Contains(t, resp.Text, "Sent UGX 10,000 to 256700000002.\nFee: UGX 100\nRef: ")

	assert.Equal(t, int64(89_900), h.balance(subscriber, "UGX"))
	assert.Equal(t, int64(10_000), h.balance(friend, "UGX"))

	require.Len(t, h.notifier.to(subscriber), 1)
	require.Len(t, h.notifier.to(friend), 1)
	assert.Contains(t, h.notifier.to(friend)[0], "You received UGX 10,000 from 256700000001")
}

func TestSendMoney_InsufficientFunds(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 100_000)
	h.register(friend, 0)

	resp := h.walk(dialCode, "1", "1", "0700000002", "100000")
	assert.False(t, resp.Continue)
	assert.Equal(t, "Insufficient balance. Available: UGX 100,000", resp.Text)

	assert.Equal(t, int64(100_000), h.balance(subscriber, "UGX"))
	assert.Equal(t, int64(0), h.balance(friend, "UGX"))
	assert.Empty(t, h.notifier.to(friend))
}

func TestSendMoney_InvalidInputKeepsStep(t *testing.T) {
	tests := []struct {
		name   string
		setup  []string
		input  string
		reason string
	}{
		{name: "bad phone", setup: []string{"1", "1"}, input: "12345", reason: msgInvalidPhone},
		{name: "self", setup: []string{"1", "1"}, input: "0700000001", reason: msgSelfTransfer},
		{name: "bad amount", setup: []string{"1", "1", "0700000002"}, input: "abc", reason: msgInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.register(subscriber, 100_000)
			h.register(friend, 0)

			h.send(dialCode)
			h.walk(tt.setup...)
			before := h.session()

			resp := h.send(tt.input)
			assert.True(t, resp.Continue)
			assert.Contains(t, resp.Text, tt.reason)

			after := h.session()
			assert.Equal(t, before.Step, after.Step)
			assert.Equal(t, before.Data, after.Data)
		})
	}
}

func TestSendMoney_Cancel(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 100_000)

	resp := h.walk(dialCode, "1", "1", "0700000002", "0")
	assert.True(t, resp.Continue)
	assert.Equal(t, localCurrencyText("UGX"), resp.Text)

	sess := h.session()
	assert.Equal(t, model.MenuLocalCurrency, sess.Menu)
	assert.Nil(t, sess.Data.Transfer)
}

func TestSendMoney_TransferRejected(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 100_000)

	// The ledger only pays registered recipients.
	resp := h.walk(dialCode, "1", "1", "0700000009", "1000", testPIN)
	assert.False(t, resp.Continue)
	assert.Equal(t, "Transaction failed: Recipient not found", resp.Text)
	assert.Equal(t, int64(100_000), h.balance(subscriber, "UGX"))
}

func TestSendMoney_SideEffectFailuresDoNotFailTheTransfer(t *testing.T) {
	notifier := mocks.NewNotifier(t)
	notifier.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smsc down"))

	receipts := mocks.NewReceiptArchive(t)
	receipts.On("Archive", mock.Anything, mock.MatchedBy(func(r model.Receipt) bool {
		return r.Kind == string(model.TransactionSend) && r.Amount == 10_000 && r.Fee == 100 && r.Counterparty == friend
	})).Return(errors.New("bucket gone")).Once()

	h := newHarness(t, func(_ *Config, deps *Collaborators) {
		deps.Notifier = notifier
		deps.Receipts = receipts
	})
	h.register(subscriber, 100_000)
	h.register(friend, 0)

	resp := h.walk(dialCode, "1", "1", "0700000002", "10000", testPIN)
	assert.False(t, resp.Continue)
	assert.Contains(t, resp.Text, "Sent UGX 10,000 to 256700000002.")
	assert.Equal(t, int64(89_900), h.balance(subscriber, "UGX"))
	notifier.AssertNumberOfCalls(t, "Send", 2)
}
