// Package http serves the USSD gateway callback over HTTP.
package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/afritokeni/ussd-engine/internal/logger"
	"github.com/afritokeni/ussd-engine/internal/model"
	"github.com/afritokeni/ussd-engine/internal/ussd"
)

// Engine processes one USSD callback.
type Engine interface {
	Process(ctx context.Context, sessionID, phoneNumber, text string) ussd.Response
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter registers the callback and health routes. A nil tokenManager
// leaves the callback open, as most gateways cannot send bearer tokens.
func NewRouter(engine Engine, tokenManager model.TokenManager, pinger Pinger, logger *logger.Logger) *mux.Router {
	h := newHandler(engine, pinger, logger)

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	var callback http.Handler = http.HandlerFunc(h.process)
	if tokenManager != nil {
		callback = requireToken(tokenManager, logger)(callback)
	}
	r.Handle("/ussd", callback).Methods(http.MethodPost)

	return r
}
