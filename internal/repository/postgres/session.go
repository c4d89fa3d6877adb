package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/afritokeni/ussd-engine/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

type SessionRepository struct {
	db *Connection
}

func NewSessionRepository(db *Connection) *SessionRepository {
	return &SessionRepository{
		db: db,
	}
}

func (r *SessionRepository) Get(ctx context.Context, id string) (model.Session, error) {
	var (
		payload []byte
		version int64
	)
	query := `SELECT data, version FROM ussd_sessions WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(&payload, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Session{}, model.ErrNotFound
		}
		return model.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return model.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	session.Version = version

	return session, nil
}

// Save upserts a session with Version 0 and otherwise updates it only if the
// stored version still matches.
func (r *SessionRepository) Save(ctx context.Context, session *model.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	var version int64
	if session.Version == 0 {
		query := `INSERT INTO ussd_sessions (id, phone, data, version, last_activity)
				  VALUES ($1, $2, $3, 1, $4)
				  ON CONFLICT (id) DO UPDATE
				  SET phone = EXCLUDED.phone, data = EXCLUDED.data,
				      version = ussd_sessions.version + 1, last_activity = EXCLUDED.last_activity
				  RETURNING version`
		err = r.db.QueryRow(ctx, query, session.ID, session.PhoneNumber, payload, session.LastActivity).Scan(&version)
	} else {
		query := `UPDATE ussd_sessions
				  SET data = $2, version = version + 1, last_activity = $3
				  WHERE id = $1 AND version = $4
				  RETURNING version`
		err = r.db.QueryRow(ctx, query, session.ID, payload, session.LastActivity, session.Version).Scan(&version)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrVersionConflict
		}
		return fmt.Errorf("failed to save session: %w", err)
	}

	session.Version = version
	return nil
}

// PurgeIdle deletes sessions idle since before and returns how many were removed.
func (r *SessionRepository) PurgeIdle(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM ussd_sessions WHERE last_activity < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
