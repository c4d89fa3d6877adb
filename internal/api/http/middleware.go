package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/afritokeni/ussd-engine/internal/logger"
	"github.com/afritokeni/ussd-engine/internal/model"
)

func requireToken(tokenManager model.TokenManager, logger *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if bearer == "" {
				http.Error(w, "missing authorization token", http.StatusUnauthorized)
				return
			}

			gatewayID, err := tokenManager.ParseGatewayToken(bearer)
			if err != nil {
				logger.Debug("HTTP middleware: rejected token", "error", err.Error())
				http.Error(w, "invalid authorization token", http.StatusUnauthorized)
				return
			}

			logger.Debug("HTTP middleware: gateway authenticated", "gateway", gatewayID)
			next.ServeHTTP(w, r)
		})
	}
}
