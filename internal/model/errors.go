package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when a session was saved by someone else in between.
	ErrVersionConflict = errors.New("session version conflict")
	// ErrRateLimited is returned by collaborators that throttle the caller.
	ErrRateLimited = errors.New("rate limited")
	// ErrInsufficientFunds is returned when a debit exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrRecipientNotFound is returned when a transfer targets an unknown phone number.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrAlreadyVoted is returned when a voter casts a second vote on a proposal.
	ErrAlreadyVoted = errors.New("already voted")
	// ErrUserExists is returned when registering a phone that already has an account.
	ErrUserExists = errors.New("user already exists")
)
