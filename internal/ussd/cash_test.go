package ussd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afritokeni/ussd-engine/internal/model"
)

func TestWithdraw_Chained(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 100_000)
	h.addAgents()

	h.send(dialCode)
	resp := h.send("1*4*50000*1*1234")

	assert.False(t, resp.Continue)
	assert.Regexp(t, `Code: WD-[A-Z0-9]{6}\n`, resp.Text)
	assert.Contains(t, resp.Text, "Amount: UGX 50,000\nFee: UGX 1,000\nAgent: Kampala Central, Kampala Road")
	assert.Contains(t, resp.Text, "Valid for 24 hours.")

	requests := h.ledger.PendingRequests()
	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, model.RequestWithdraw, req.Kind)
	assert.Regexp(t, `^WD-[A-Z0-9]{6}$`, req.Code)
	assert.Equal(t, int64(50_000), req.Amount)
	assert.Equal(t, int64(1_000), req.Fee)
	assert.Equal(t, "agent-1", req.AgentID)
	assert.Equal(t, h.clock.Add(model.DefaultTariffs().CodeValidity), req.ExpiresAt)

	assert.Len(t, h.notifier.to("256700000100"), 1, "agent is told about the request")
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 50_000)
	h.addAgents()

	resp := h.walk(dialCode, "1", "4", "50000")
	assert.False(t, resp.Continue)
	assert.Equal(t, "Insufficient balance. Available: UGX 50,000", resp.Text)
	assert.Empty(t, h.ledger.PendingRequests())
}

func TestDeposit(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)
	h.addAgents()

	resp := h.walk(dialCode, "1", "3")
	assert.Equal(t, "Enter amount to deposit (UGX 1,000 - UGX 5,000,000):\n"+optionCancel, resp.Text)

	resp = h.send("500")
	assert.True(t, resp.Continue)
	assert.Contains(t, resp.Text, "outside the allowed range")

	resp = h.send("20000")
	assert.True(t, resp.Continue)
	assert.Equal(t, promptAgent+"\n1. Kampala Central - Kampala Road\n2. Ntinda Shop - Ntinda\n"+optionCancel, resp.Text)

	resp = h.send("3")
	assert.True(t, resp.Continue)
	assert.Contains(t, resp.Text, msgInvalidOption)

	resp = h.send("2")
	assert.Equal(t, "Deposit of UGX 20,000\nAgent: Ntinda Shop\n"+promptConfirmPIN, resp.Text)

	resp = h.send(testPIN)
	assert.False(t, resp.Continue)
	assert.Regexp(t, `^Deposit request created\.\nCode: DEP-[A-Z0-9]{6}\nAmount: UGX 20,000\nAgent: Ntinda Shop, Ntinda\n`, resp.Text)

	requests := h.ledger.PendingRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, model.RequestDeposit, requests[0].Kind)
	assert.Equal(t, int64(0), requests[0].Fee)
	assert.Equal(t, int64(0), h.balance(subscriber, "UGX"), "deposits settle at the agent")
}

func TestDeposit_NoAgents(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)

	resp := h.walk(dialCode, "1", "3", "20000")
	assert.False(t, resp.Continue)
	assert.Equal(t, msgNoAgents, resp.Text)
}

func TestDeposit_Cancel(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)
	h.addAgents()

	resp := h.walk(dialCode, "1", "3", "20000", "0")
	assert.True(t, resp.Continue)
	assert.Equal(t, localCurrencyText("UGX"), resp.Text)
	assert.Nil(t, h.session().Data.Cash)
}

func TestDeposit_WrongPINKeepsRequestUncreated(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)
	h.addAgents()

	resp := h.walk(dialCode, "1", "3", "20000", "1", "0000")
	assert.True(t, resp.Continue)
	assert.Contains(t, resp.Text, "Incorrect PIN. 2 attempt(s) remaining.")
	assert.Empty(t, h.ledger.PendingRequests())
	assert.Equal(t, int(cashAwaitPIN), h.session().Step)
}
