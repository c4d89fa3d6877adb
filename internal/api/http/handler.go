package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/afritokeni/ussd-engine/internal/logger"
)

const maxFormBytes = 8 << 10

type handler struct {
	engine Engine
	pinger Pinger
	logger *logger.Logger
}

func newHandler(engine Engine, pinger Pinger, logger *logger.Logger) *handler {
	return &handler{
		engine: engine,
		pinger: pinger,
		logger: logger,
	}
}

// process handles the gateway callback. The body is a form with sessionId,
// phoneNumber, text and serviceCode; the reply is plain text starting with
// CON or END.
func (h *handler) process(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sessionID := strings.TrimSpace(r.PostForm.Get("sessionId"))
	phone := strings.TrimSpace(r.PostForm.Get("phoneNumber"))
	text := r.PostForm.Get("text")

	if phone == "" {
		http.Error(w, "phoneNumber is required", http.StatusBadRequest)
		return
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	h.logger.Debug("HTTP handler: processing callback",
		"session_id", sessionID,
		"service_code", r.PostForm.Get("serviceCode"))

	resp := h.engine.Process(r.Context(), sessionID, phone, text)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, resp.Wire()); err != nil {
		h.logger.Warn("HTTP handler: failed to write response", "session_id", sessionID, "error", err.Error())
	}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Error("HTTP handler: health check failed", "error", err.Error())
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	fmt.Fprintln(w, "OK")
}
