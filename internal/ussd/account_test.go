package ussd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBalance(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 100_000)

	resp := h.walk(dialCode, "1", "2", testPIN)
	assert.False(t, resp.Continue)
	assert.Equal(t, "Your Balance\nUGX 100,000\n"+msgThankYou, resp.Text)
}

func TestTransactionHistory(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 100_000)
	h.register(friend, 0)

	h.walk(dialCode, "1", "1", "0700000002", "5000", testPIN)

	resp := h.walk(dialCode, "1", "5", testPIN)
	assert.False(t, resp.Continue)
	assert.Regexp(t, `^Recent Transactions\n1\. \d{2}/\d{2} Sent UGX 5,000 to 256700000002$`, resp.Text)
}

func TestFindAgent(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)

	resp := h.walk(dialCode, "1", "6")
	assert.False(t, resp.Continue)
	assert.Equal(t, msgNoAgents, resp.Text)

	h.addAgents()
	resp = h.walk(dialCode, "1", "6")
	assert.False(t, resp.Continue)
	assert.Equal(t, "Nearby Agents\n"+
		"1. Kampala Central, Kampala Road (256700000100)\n"+
		"2. Ntinda Shop, Ntinda (256700000101)", resp.Text)
}

func TestHelp(t *testing.T) {
	h := newHarness(t)
	h.register(subscriber, 0)

	resp := h.walk(dialCode, "5")
	assert.False(t, resp.Continue)
	assert.Equal(t, helpText(dialCode), resp.Text)
}
