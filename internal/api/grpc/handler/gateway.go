package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/afritokeni/ussd-engine/internal/logger"
	"github.com/afritokeni/ussd-engine/internal/model"
	"github.com/afritokeni/ussd-engine/internal/ussd"
)

// Engine processes one USSD callback.
type Engine interface {
	Process(ctx context.Context, sessionID, phoneNumber, text string) ussd.Response
}

// Request field names, matching the HTTP callback form.
const (
	fieldSessionID   = "sessionId"
	fieldPhoneNumber = "phoneNumber"
	fieldText        = "text"
	fieldServiceCode = "serviceCode"
)

// Gateway handles the gateway gRPC endpoint.
type Gateway struct {
	engine         Engine
	contextManager model.ContextManager
	logger         *logger.Logger
}

var _ GatewayServer = (*Gateway)(nil)

// NewGateway creates a new Gateway handler.
func NewGateway(engine Engine, contextManager model.ContextManager, logger *logger.Logger) *Gateway {
	return &Gateway{
		engine:         engine,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Process runs the callback through the engine. The reply carries the
// menu text, the continue flag and the wire form with its CON/END prefix.
func (h *Gateway) Process(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	gatewayID, ok := h.contextManager.GetGatewayFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "gateway is not authenticated")
	}

	fields := req.GetFields()
	sessionID := strings.TrimSpace(fields[fieldSessionID].GetStringValue())
	phone := strings.TrimSpace(fields[fieldPhoneNumber].GetStringValue())
	text := fields[fieldText].GetStringValue()

	if phone == "" {
		return nil, handleError(fmt.Errorf("%w: %s is required", errInvalidRequest, fieldPhoneNumber))
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	h.logger.Debug("Gateway handler: processing callback",
		"gateway", gatewayID,
		"session_id", sessionID,
		"service_code", fields[fieldServiceCode].GetStringValue())

	resp := h.engine.Process(ctx, sessionID, phone, text)

	out, err := structpb.NewStruct(map[string]interface{}{
		fieldSessionID: sessionID,
		"text":         resp.Text,
		"continue":     resp.Continue,
		"wire":         resp.Wire(),
	})
	if err != nil {
		h.logger.Error("Gateway handler: failed to build response", "session_id", sessionID, "error", err.Error())
		return nil, handleError(err)
	}

	return out, nil
}
