package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/afritokeni/ussd-engine/internal/model"
)

var _ model.SessionStore = (*SessionStore)(nil)

const (
	sessionKeyPrefix = "ussd:session:"
	maxSaveRetries   = 3
)

// SessionStore keeps sessions as JSON values that expire after the
// retention period. Writes use WATCH/MULTI so a stale version never
// overwrites a newer one.
type SessionStore struct {
	client    goredis.UniversalClient
	retention time.Duration
}

func NewSessionStore(client goredis.UniversalClient, retention time.Duration) *SessionStore {
	return &SessionStore{
		client:    client,
		retention: retention,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *SessionStore) Get(ctx context.Context, id string) (model.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return model.Session{}, model.ErrNotFound
		}
		return model.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	return decodeSession(raw)
}

func (s *SessionStore) Save(ctx context.Context, session *model.Session) error {
	key := sessionKey(session.ID)

	var saved int64
	txf := func(tx *goredis.Tx) error {
		current, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if session.Version != 0 && current != session.Version {
			return model.ErrVersionConflict
		}

		candidate := *session
		candidate.Version = current + 1
		payload, err := json.Marshal(candidate)
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.retention)
			return nil
		})
		if err != nil {
			return err
		}
		saved = candidate.Version
		return nil
	}

	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			session.Version = saved
			return nil
		case errors.Is(err, goredis.TxFailedErr):
			// A versioned write lost the race; an unconditional one retries.
			if session.Version != 0 {
				return model.ErrVersionConflict
			}
		case errors.Is(err, model.ErrVersionConflict):
			return err
		default:
			return fmt.Errorf("failed to save session: %w", err)
		}
	}

	return model.ErrVersionConflict
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func storedVersion(ctx context.Context, tx *goredis.Tx, key string) (int64, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read session: %w", err)
	}

	session, err := decodeSession(raw)
	if err != nil {
		return 0, err
	}
	return session.Version, nil
}

func decodeSession(raw []byte) (model.Session, error) {
	var session model.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return model.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, nil
}
