package ussd

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/afritokeni/ussd-engine/internal/model"
	"github.com/afritokeni/ussd-engine/internal/rates"
	"github.com/afritokeni/ussd-engine/internal/repository/memory"
	"github.com/afritokeni/ussd-engine/internal/testutil"
)

const (
	testSession = "ATUid_test"
	subscriber  = "256700000001"
	friend      = "256700000002"
	testPIN     = "1234"
	dialCode    = "*229#"
)

type sentMessage struct {
	destination string
	message     string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) Send(_ context.Context, destination, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{destination: destination, message: message})
	return nil
}

func (n *recordingNotifier) to(destination string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, m := range n.sent {
		if m.destination == destination {
			out = append(out, m.message)
		}
	}
	return out
}

type harness struct {
	t        *testing.T
	engine   *Engine
	store    *memory.SessionStore
	ledger   *memory.Ledger
	gov      *memory.Governance
	notifier *recordingNotifier
	clock    time.Time
}

func testConfig() Config {
	return Config{
		DialCode:    dialCode,
		CountryCode: "256",
		Currency:    "UGX",
		Timeout:     3 * time.Minute,
		Tariffs:     model.DefaultTariffs(),
	}
}

func newHarness(t *testing.T, configure ...func(*Config, *Collaborators)) *harness {
	t.Helper()

	h := &harness{
		t:        t,
		store:    memory.NewSessionStore(),
		ledger:   memory.NewLedger(),
		gov:      memory.NewGovernance(),
		notifier: &recordingNotifier{},
		clock:    time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}

	cfg := testConfig()
	deps := Collaborators{
		Users:      h.ledger,
		Wallet:     h.ledger,
		Agents:     h.ledger,
		Requests:   h.ledger,
		Notifier:   h.notifier,
		Rates:      rates.NewStatic("UGX", cfg.Tariffs.Rates, h.clock),
		Governance: h.gov,
	}
	for _, fn := range configure {
		fn(&cfg, &deps)
	}

	h.engine = NewEngine(h.store, deps, cfg, testutil.MakeNoopLogger(), WithClock(func() time.Time { return h.clock }))
	return h
}

// register creates a subscriber with a PIN and a local currency balance.
func (h *harness) register(phone string, balance int64) {
	h.t.Helper()
	ctx := context.Background()

	_, err := h.ledger.Register(ctx, model.User{Phone: phone, FullName: "Test User", Currency: "UGX"})
	require.NoError(h.t, err)
	require.NoError(h.t, h.ledger.SetPIN(ctx, phone, testPIN))
	require.NoError(h.t, h.ledger.UpdateBalance(ctx, phone, "UGX", balance))
}

func (h *harness) fund(phone, asset string, amount int64) {
	h.t.Helper()
	require.NoError(h.t, h.ledger.UpdateBalance(context.Background(), phone, asset, amount))
}

func (h *harness) addAgents() {
	h.ledger.AddAgent(model.Agent{ID: "agent-1", Name: "Kampala Central", Location: "Kampala Road", Phone: "256700000100"})
	h.ledger.AddAgent(model.Agent{ID: "agent-2", Name: "Ntinda Shop", Location: "Ntinda", Phone: "256700000101"})
}

func (h *harness) send(text string) Response {
	h.t.Helper()
	return h.engine.Process(context.Background(), testSession, "+"+subscriber, text)
}

// walk sends each input in turn and returns the last response.
func (h *harness) walk(inputs ...string) Response {
	h.t.Helper()
	var resp Response
	for _, in := range inputs {
		resp = h.send(in)
	}
	return resp
}

func (h *harness) session() model.Session {
	h.t.Helper()
	sess, err := h.store.Get(context.Background(), testSession)
	require.NoError(h.t, err)
	return sess
}

func (h *harness) balance(phone, asset string) int64 {
	h.t.Helper()
	bal, err := h.ledger.Balance(context.Background(), phone, asset)
	require.NoError(h.t, err)
	return bal.Amount
}
