package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/afritokeni/ussd-engine/internal/config"
	"github.com/afritokeni/ussd-engine/internal/logger"
	"github.com/afritokeni/ussd-engine/internal/model"
	"github.com/afritokeni/ussd-engine/internal/notify"
	"github.com/afritokeni/ussd-engine/internal/rates"
	"github.com/afritokeni/ussd-engine/internal/repository/memory"
	"github.com/afritokeni/ussd-engine/internal/repository/postgres"
	"github.com/afritokeni/ussd-engine/internal/repository/redis"
	"github.com/afritokeni/ussd-engine/internal/storage"
	"github.com/afritokeni/ussd-engine/internal/storage/minio"
	"github.com/afritokeni/ussd-engine/internal/ussd"
)

// Session and notifier backends selectable through configuration.
const (
	backendMemory   = "memory"
	backendRedis    = "redis"
	backendPostgres = "postgres"
	backendLog      = "log"
)

// backend holds everything the engine needs plus the resources to release.
type backend struct {
	engine  *ussd.Engine
	db      *postgres.Connection
	closers []func() error
}

func (b *backend) Ping(ctx context.Context) error {
	if b.db == nil {
		return nil
	}
	return b.db.Ping(ctx)
}

func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

func engineConfig(cfg *config.Config, tariffs model.Tariffs) ussd.Config {
	return ussd.Config{
		DialCode:    cfg.USSD.DialCode,
		CountryCode: cfg.USSD.CountryCode,
		Currency:    cfg.USSD.Currency,
		Timeout:     cfg.Session.Timeout,
		DemoMode:    cfg.USSD.DemoMode,
		Tariffs:     tariffs,
	}
}

// newBackend builds the engine over the configured stores. Without a
// database DSN the collaborators live in memory.
func newBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	tariffs, err := config.LoadTariffs(cfg.USSD.TariffsFile)
	if err != nil {
		return nil, err
	}

	b := &backend{}
	deps := ussd.Collaborators{
		Rates: rates.NewStatic(cfg.USSD.Currency, tariffs.Rates, time.Now()),
	}

	if cfg.Database.DSN != "" {
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		b.db = db
		b.closers = append(b.closers, db.Close)

		deps.Users = postgres.NewUserRepository(db)
		deps.Wallet = postgres.NewWalletRepository(db)
		deps.Agents = postgres.NewAgentRepository(db)
		deps.Requests = postgres.NewRequestRepository(db)
		deps.Governance = postgres.NewGovernanceRepository(db)
	} else {
		log.Warn("Backend: no database configured, collaborators are kept in memory")
		ledger := memory.NewLedger()
		deps.Users = ledger
		deps.Wallet = ledger
		deps.Agents = ledger
		deps.Requests = ledger
		deps.Governance = memory.NewGovernance()
	}

	needRedis := cfg.Session.Backend == backendRedis || cfg.Notify.Backend == backendRedis
	var redisClient *goredis.Client
	if needRedis {
		client, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisClient = client
		b.closers = append(b.closers, client.Close)
	}

	var store model.SessionStore
	switch cfg.Session.Backend {
	case backendMemory:
		store = memory.NewSessionStore()
	case backendRedis:
		store = redis.NewSessionStore(redisClient, cfg.Session.Retention)
	case backendPostgres:
		if b.db == nil {
			_ = b.Close()
			return nil, fmt.Errorf("session backend %q needs DATABASE_DSN", backendPostgres)
		}
		store = postgres.NewSessionRepository(b.db)
	default:
		_ = b.Close()
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	switch cfg.Notify.Backend {
	case backendLog:
		deps.Notifier = notify.NewLog(log)
	case backendRedis:
		deps.Notifier = redis.NewNotifier(redisClient, cfg.Notify.Queue)
	default:
		_ = b.Close()
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Notify.Backend)
	}

	if cfg.Storage.Enabled {
		objects, err := minio.Connect(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("failed to initialize receipt storage: %w", err)
		}
		deps.Receipts = storage.NewArchive(objects, log)
	}

	b.engine = ussd.NewEngine(store, deps, engineConfig(cfg, tariffs), log)
	return b, nil
}
