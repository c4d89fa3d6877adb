package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	grpcctx "github.com/afritokeni/ussd-engine/internal/api/grpc/context"
	"github.com/afritokeni/ussd-engine/internal/api/grpc/router"
	grpcserver "github.com/afritokeni/ussd-engine/internal/api/grpc/server"
	httpapi "github.com/afritokeni/ussd-engine/internal/api/http"
	"github.com/afritokeni/ussd-engine/internal/config"
	"github.com/afritokeni/ussd-engine/internal/logger"
	"github.com/afritokeni/ussd-engine/internal/model"
	"github.com/afritokeni/ussd-engine/internal/repository/postgres"
	"github.com/afritokeni/ussd-engine/internal/server"
	"github.com/afritokeni/ussd-engine/internal/token"
)

const shutdownTimeout = 10 * time.Second

type listener struct {
	server   model.Server
	security model.SecurityLayer
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the gateway callback over HTTP and, if enabled, gRPC",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	b, err := newBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Error("Serve: failed to release resources", "error", err)
		}
	}()

	tokens := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	var httpTokens model.TokenManager
	if cfg.HTTP.RequireToken {
		httpTokens = tokens
	}
	listeners := []listener{{
		server:   httpapi.NewServer(httpapi.NewRouter(b.engine, httpTokens, b, log), fmt.Sprintf(":%s", cfg.HTTP.Port)),
		security: server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName),
	}}

	if cfg.GRPC.Enabled {
		s := router.New(b.engine, tokens, grpcctx.NewManager(), log).Register()
		listeners = append(listeners, listener{
			server:   grpcserver.NewGRPCServer(s, fmt.Sprintf(":%s", cfg.GRPC.Port)),
			security: server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName),
		})
	}

	if cfg.Session.Backend == backendPostgres && b.db != nil {
		go purgeSessions(ctx, postgres.NewSessionRepository(b.db), cfg.Session.Retention, log)
	}

	var wg sync.WaitGroup
	for _, l := range listeners {
		wg.Add(1)
		go func(l listener) {
			defer wg.Done()
			log.Info("Serve: starting server", "address", l.server.Address())
			if err := l.server.Start(l.security); err != nil {
				log.Error("Serve: server failed", "address", l.server.Address(), "error", err)
			}
		}(l)
	}

	log.Info("Serve: ready", "version", buildVersion, "commit", buildCommit, "dial_code", cfg.USSD.DialCode)

	<-ctx.Done()
	log.Info("Serve: received interruption signal, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, l := range listeners {
		if err := l.server.Stop(shutdownCtx); err != nil {
			log.Error("Serve: error during shutdown", "address", l.server.Address(), "error", err)
		}
	}

	wg.Wait()
	log.Info("Serve: shutdown complete")
	return nil
}

type idlePurger interface {
	PurgeIdle(ctx context.Context, before time.Time) (int64, error)
}

// purgeSessions deletes sessions idle longer than retention until ctx ends.
func purgeSessions(ctx context.Context, sessions idlePurger, retention time.Duration, log *logger.Logger) {
	if retention <= 0 {
		return
	}
	ticker := time.NewTicker(retention / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := sessions.PurgeIdle(ctx, now.Add(-retention))
			if err != nil {
				log.Error("Serve: failed to purge sessions", "error", err)
				continue
			}
			if n > 0 {
				log.Debug("Serve: purged idle sessions", "count", n)
			}
		}
	}
}
