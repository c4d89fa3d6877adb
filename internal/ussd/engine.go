// Package ussd implements the USSD session engine: it turns gateway requests
// into menu navigation, drives the multi-step flows and persists the
// conversation between requests.
package ussd

import (
	"context"
	"crypto/rand"
	"io"
	"regexp"
	"time"

	"github.com/afritokeni/ussd-engine/internal/logger"
	"github.com/afritokeni/ussd-engine/internal/model"
)

// Config holds the engine parameters.
type Config struct {
	DialCode    string
	CountryCode string
	Currency    string
	Timeout     time.Duration
	// DemoMode accepts the demo PIN in crypto flows when PIN verification
	// itself fails. Never enable it in production.
	DemoMode bool
	Tariffs  model.Tariffs
}

// Collaborators are the services the engine delegates business work to.
// Receipts is optional.
type Collaborators struct {
	Users      model.UserDirectory
	Wallet     model.Wallet
	Agents     model.AgentDirectory
	Requests   model.RequestStore
	Notifier   model.Notifier
	Rates      model.RateProvider
	Governance model.GovernanceLedger
	Receipts   model.ReceiptArchive
}

type handler func(ctx context.Context, in input, sess *model.Session) (Result, error)

// Engine dispatches gateway requests to menu handlers.
type Engine struct {
	store  model.SessionStore
	deps   Collaborators
	cfg    Config
	logger *logger.Logger

	now    func() time.Time
	random io.Reader
	phone  *regexp.Regexp

	handlers map[model.Menu]handler
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRandom replaces the randomness source used for codes.
func WithRandom(r io.Reader) Option {
	return func(e *Engine) {
		e.random = r
	}
}

// NewEngine creates new Engine instance.
func NewEngine(store model.SessionStore, deps Collaborators, cfg Config, logger *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		deps:   deps,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		random: rand.Reader,
		phone:  regexp.MustCompile(`^(?:\+?` + regexp.QuoteMeta(cfg.CountryCode) + `|0)([17]\d{8})$`),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.handlers = map[model.Menu]handler{
		model.MenuRegistration:       e.handleRegistration,
		model.MenuVerification:       e.handleVerification,
		model.MenuPINCheck:           e.handlePINCheck,
		model.MenuPINSetup:           e.handlePINSetup,
		model.MenuMain:               e.handleMain,
		model.MenuLocalCurrency:      e.handleLocalCurrency,
		model.MenuSendMoney:          e.handleSendMoney,
		model.MenuDeposit:            e.handleDeposit,
		model.MenuWithdraw:           e.handleWithdraw,
		model.MenuCheckBalance:       e.handleCheckBalance,
		model.MenuTransactionHistory: e.handleTransactionHistory,
		model.MenuFindAgent:          e.handleFindAgent,
		model.MenuDAO:                e.handleDAO,
		model.MenuDAOProposals:       e.handleProposals,
		model.MenuDAOVotingPower:     e.handleVotingPower,
		model.MenuDAOActiveVotes:     e.handleActiveVotes,
		model.MenuLanguage:           e.handleLanguage,
	}
	for _, asset := range []cryptoAsset{bitcoin, usdc} {
		flow := &cryptoFlow{engine: e, asset: asset}
		e.handlers[asset.menus.root] = flow.handleMenu
		e.handlers[asset.menus.balance] = flow.handleBalance
		e.handlers[asset.menus.rate] = flow.handleRate
		e.handlers[asset.menus.buy] = flow.handleBuy
		e.handlers[asset.menus.sell] = flow.handleSell
		e.handlers[asset.menus.send] = flow.handleSend
	}

	return e
}
