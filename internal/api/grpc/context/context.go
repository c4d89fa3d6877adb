package context

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// gatewayKey is the metadata key carrying the authenticated gateway id.
const gatewayKey string = "x-gateway-id"

// Manager stores the authenticated gateway id in incoming gRPC metadata.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetGatewayToContext returns ctx with gatewayID in its incoming metadata.
// Existing metadata is copied, never mutated.
func (m *Manager) SetGatewayToContext(ctx context.Context, gatewayID string) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(nil)
	} else {
		md = md.Copy()
	}
	md.Set(gatewayKey, gatewayID)

	return metadata.NewIncomingContext(ctx, md)
}

func (m *Manager) GetGatewayFromContext(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}

	ids := md.Get(gatewayKey)
	if len(ids) == 0 || ids[0] == "" {
		return "", false
	}

	return ids[0], true
}
