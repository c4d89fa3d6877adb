package context

import (
	stdctx "context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"
)

func TestManager_SetAndGetGateway(t *testing.T) {
	m := NewManager()
	ctx := m.SetGatewayToContext(stdctx.Background(), "africastalking")

	got, ok := m.GetGatewayFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "africastalking", got)
}

func TestManager_GetGateway_NotFound(t *testing.T) {
	m := NewManager()

	_, ok := m.GetGatewayFromContext(stdctx.Background())
	assert.False(t, ok)

	ctx := metadata.NewIncomingContext(stdctx.Background(), metadata.Pairs("x-gateway-id", ""))
	_, ok = m.GetGatewayFromContext(ctx)
	assert.False(t, ok)
}

func TestManager_SetGateway_KeepsExistingMetadata(t *testing.T) {
	m := NewManager()
	base := metadata.New(map[string]string{"x-trace-id": "t"})
	ctxWithMD := metadata.NewIncomingContext(stdctx.Background(), base)

	ctx := m.SetGatewayToContext(ctxWithMD, "gw-1")

	got, ok := m.GetGatewayFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "gw-1", got)

	md, _ := metadata.FromIncomingContext(ctx)
	assert.Equal(t, []string{"t"}, md.Get("x-trace-id"))
	assert.Empty(t, base.Get("x-gateway-id"))
}
