package model

import "context"

// ContextManager stores the authenticated gateway identity in request contexts.
type ContextManager interface {
	SetGatewayToContext(ctx context.Context, gatewayID string) context.Context
	GetGatewayFromContext(ctx context.Context) (string, bool)
}
