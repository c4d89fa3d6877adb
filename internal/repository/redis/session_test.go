package redis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afritokeni/ussd-engine/internal/model"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "ussd:session:ATUid_123", sessionKey("ATUid_123"))
}

func TestDecodeSession(t *testing.T) {
	s := model.NewSession("sid", "256700000001", time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
	s.Version = 4
	s.Data.Currency = "UGX"
	raw, err := json.Marshal(s)
	require.NoError(t, err)

	got, err := decodeSession(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Version)
	assert.Equal(t, "UGX", got.Data.Currency)

	_, err = decodeSession([]byte("{"))
	assert.Error(t, err)
}

func TestNewSessionStore(t *testing.T) {
	store := NewSessionStore(nil, 30*time.Minute)

	assert.NotNil(t, store)
	assert.Equal(t, 30*time.Minute, store.retention)
}
