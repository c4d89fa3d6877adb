package model

import (
	"context"
	"time"
)

// SessionStore persists USSD sessions keyed by the gateway session id.
//
// Save with Version 0 replaces whatever is stored. Save with a non-zero
// Version succeeds only when the stored record still carries that version
// and returns ErrVersionConflict otherwise. A successful Save increments
// Version on the passed session.
type SessionStore interface {
	Get(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, session *Session) error
}

// Session is the per-dialog conversation state.
type Session struct {
	ID           string      `json:"session_id"`
	PhoneNumber  string      `json:"phone_number"`
	Language     Language    `json:"language,omitempty"`
	Menu         Menu        `json:"current_menu"`
	Step         int         `json:"step"`
	Data         SessionData `json:"data"`
	LastActivity time.Time   `json:"last_activity"`
	Version      int64       `json:"version"`
}

// NewSession returns a fresh session positioned at the main menu.
func NewSession(id, phoneNumber string, now time.Time) Session {
	return Session{
		ID:           id,
		PhoneNumber:  phoneNumber,
		Menu:         MenuMain,
		LastActivity: now,
	}
}

// Expired reports whether the session has been idle longer than timeout.
func (s Session) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) > timeout
}

// PreferredLanguage returns the session language, defaulting to English.
func (s Session) PreferredLanguage() Language {
	if s.Language == "" {
		return LanguageEnglish
	}
	return s.Language
}

// Enter moves the session to menu at its entry step. Flow data and the PIN
// attempt counter are dropped; currency, the verified flag and a pending
// operation survive.
func (s *Session) Enter(menu Menu) {
	s.Menu = menu
	s.Step = 0
	s.Data.ResetFlow()
}

// SessionData holds the fields accumulated by the flow in progress. Exactly
// one flow variant is populated at a time.
type SessionData struct {
	Currency    string            `json:"currency,omitempty"`
	PinVerified bool              `json:"pin_verified,omitempty"`
	PinAttempts int               `json:"pin_attempts,omitempty"`
	Pending     *PendingOperation `json:"pending,omitempty"`

	Registration *RegistrationData `json:"registration,omitempty"`
	PinSetup     *PinSetupData     `json:"pin_setup,omitempty"`
	Transfer     *TransferData     `json:"transfer,omitempty"`
	Cash         *CashData         `json:"cash,omitempty"`
	Crypto       *CryptoData       `json:"crypto,omitempty"`
	Vote         *VoteData         `json:"vote,omitempty"`
}

// ResetFlow clears the flow variants and the attempt counter.
func (d *SessionData) ResetFlow() {
	d.PinAttempts = 0
	d.Registration = nil
	d.PinSetup = nil
	d.Transfer = nil
	d.Cash = nil
	d.Crypto = nil
	d.Vote = nil
}

// PendingOperation remembers a sensitive action interrupted by a PIN check.
type PendingOperation struct {
	Label string `json:"label"`
	Next  Menu   `json:"next_menu"`
}

// RegistrationData carries a sign-up in progress.
type RegistrationData struct {
	FullName string `json:"full_name"`
	Code     string `json:"code"`
	Attempts int    `json:"attempts,omitempty"`
}

// PinSetupData carries the first entry of a new PIN until it is confirmed.
type PinSetupData struct {
	NewPIN string `json:"new_pin"`
}

// TransferData carries a local-currency send in progress.
type TransferData struct {
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount,omitempty"`
	Fee       int64  `json:"fee,omitempty"`
}

// CashData carries a deposit or withdrawal in progress.
type CashData struct {
	Amount int64   `json:"amount,omitempty"`
	Fee    int64   `json:"fee,omitempty"`
	Agents []Agent `json:"agents,omitempty"`
	Agent  *Agent  `json:"agent,omitempty"`
}

// CryptoData carries a buy, sell or send of a crypto asset in progress.
// LocalAmount is in local currency units, AssetAmount in the asset's minor units.
type CryptoData struct {
	Recipient   string  `json:"recipient,omitempty"`
	LocalAmount int64   `json:"local_amount,omitempty"`
	AssetAmount int64   `json:"asset_amount,omitempty"`
	Fee         int64   `json:"fee,omitempty"`
	Rate        float64 `json:"rate,omitempty"`
	Agents      []Agent `json:"agents,omitempty"`
	Agent       *Agent  `json:"agent,omitempty"`
}

// VoteData carries a governance vote in progress.
type VoteData struct {
	Proposals []Proposal `json:"proposals,omitempty"`
	Proposal  *Proposal  `json:"proposal,omitempty"`
	Stance    VoteStance `json:"stance,omitempty"`
	Tokens    int64      `json:"tokens,omitempty"`
	Available int64      `json:"available,omitempty"`
}
