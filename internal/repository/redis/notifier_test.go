package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	key    string
	values []interface{}
	err    error
}

func (f *fakeQueue) LPush(_ context.Context, key string, values ...interface{}) *goredis.IntCmd {
	f.key = key
	f.values = append(f.values, values...)
	return goredis.NewIntResult(int64(len(f.values)), f.err)
}

func TestNotifier_Send(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "enqueued"},
		{name: "redis down", err: errors.New("connection refused"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQueue{err: tt.err}
			n := NewNotifier(q, "sms:outbox")
			n.now = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }

			err := n.Send(context.Background(), "256700000001", "Your code is 123456")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, "sms:outbox", q.key)
			require.Len(t, q.values, 1)

			var msg Message
			require.NoError(t, json.Unmarshal(q.values[0].([]byte), &msg))
			assert.Equal(t, "256700000001", msg.To)
			assert.Equal(t, "Your code is 123456", msg.Body)
			assert.Equal(t, 2026, msg.CreatedAt.Year())
		})
	}
}
