package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/afritokeni/ussd-engine/internal/mocks"
	"github.com/afritokeni/ussd-engine/internal/model"
	"github.com/afritokeni/ussd-engine/internal/testutil"
)

var receipt = model.Receipt{
	Reference:    "DEP-ABC123",
	Kind:         "deposit",
	Phone:        "256700000001",
	Counterparty: "agent-1",
	Asset:        "UGX",
	Amount:       50_000,
	CreatedAt:    time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
}

func TestReceiptKey(t *testing.T) {
	assert.Equal(t, "receipts/2026/10/15/DEP-ABC123.json", ReceiptKey(receipt))
}

func TestArchive_Archive(t *testing.T) {
	key := "receipts/2026/10/15/DEP-ABC123.json"

	tests := []struct {
		name    string
		setup   func(s *mocks.Storage)
		receipt model.Receipt
		wantErr string
	}{
		{
			name: "uploads new receipt",
			setup: func(s *mocks.Storage) {
				s.On("Exists", mock.Anything, key).Return(false, nil)
				s.On("Upload", mock.Anything, key, mock.Anything, mock.AnythingOfType("int64"), "application/json").Return(nil)
			},
			receipt: receipt,
		},
		{
			name: "skips stored receipt",
			setup: func(s *mocks.Storage) {
				s.On("Exists", mock.Anything, key).Return(true, nil)
			},
			receipt: receipt,
		},
		{
			name: "stat fails",
			setup: func(s *mocks.Storage) {
				s.On("Exists", mock.Anything, key).Return(false, errors.New("down"))
			},
			receipt: receipt,
			wantErr: "failed to check receipt",
		},
		{
			name: "upload fails",
			setup: func(s *mocks.Storage) {
				s.On("Exists", mock.Anything, key).Return(false, nil)
				s.On("Upload", mock.Anything, key, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("full"))
			},
			receipt: receipt,
			wantErr: "failed to upload receipt",
		},
		{
			name:    "empty reference",
			setup:   func(s *mocks.Storage) {},
			receipt: model.Receipt{},
			wantErr: "empty reference",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mocks.NewStorage(t)
			tt.setup(s)

			err := NewArchive(s, testutil.MakeNoopLogger()).Archive(context.Background(), tt.receipt)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
