package model

import "context"

// Notifier delivers a text message to a phone number.
type Notifier interface {
	Send(ctx context.Context, destination, message string) error
}
