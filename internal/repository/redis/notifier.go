package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/afritokeni/ussd-engine/internal/model"
)

var _ model.Notifier = (*Notifier)(nil)

type queue interface {
	LPush(ctx context.Context, key string, values ...interface{}) *goredis.IntCmd
}

// Message is an SMS waiting in the outbox for the delivery worker.
type Message struct {
	To        string    `json:"to"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier pushes SMS messages onto a Redis list drained by a separate
// delivery worker.
type Notifier struct {
	client queue
	key    string
	now    func() time.Time
}

func NewNotifier(client queue, key string) *Notifier {
	return &Notifier{
		client: client,
		key:    key,
		now:    time.Now,
	}
}

func (n *Notifier) Send(ctx context.Context, destination, message string) error {
	payload, err := json.Marshal(Message{
		To:        destination,
		Body:      message,
		CreatedAt: n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	if err := n.client.LPush(ctx, n.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue message: %w", err)
	}
	return nil
}
