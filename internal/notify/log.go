// Package notify delivers subscriber notifications.
package notify

import (
	"context"

	"github.com/afritokeni/ussd-engine/internal/logger"
	"github.com/afritokeni/ussd-engine/internal/model"
)

var _ model.Notifier = (*Log)(nil)

// Log writes notifications to the application log instead of sending them.
type Log struct {
	logger *logger.Logger
}

// NewLog creates new Log instance.
func NewLog(logger *logger.Logger) *Log {
	return &Log{logger: logger}
}

// Send logs the message.
func (n *Log) Send(_ context.Context, destination, message string) error {
	n.logger.Info("Notifier: SMS", "destination", destination, "message", message)
	return nil
}
