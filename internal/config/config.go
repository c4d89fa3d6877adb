package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/afritokeni/ussd-engine/internal/model"
)

// Config contains service configuration parameters.
type Config struct {
	LogLevel int      `env:"LOG_LEVEL" envDefault:"0"`
	HTTP     HTTP     `envPrefix:"HTTP_"`
	GRPC     GRPC     `envPrefix:"GRPC_"`
	Session  Session  `envPrefix:"SESSION_"`
	Database Database `envPrefix:"DATABASE_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Storage  Storage  `envPrefix:"MINIO_"`
	JWT      JWT      `envPrefix:"JWT_"`
	Notify   Notify   `envPrefix:"NOTIFY_"`
	USSD     USSD     `envPrefix:"USSD_"`
}

// HTTP contains gateway callback server parameters.
type HTTP struct {
	Port               string `env:"PORT" envDefault:"8080"`
	EnableHTTPS        bool   `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
	RequireToken       bool   `env:"REQUIRE_TOKEN" envDefault:"false"`
}

// GRPC contains gRPC server parameters.
type GRPC struct {
	Enabled            bool   `env:"ENABLED" envDefault:"false"`
	Port               string `env:"PORT" envDefault:"50051"`
	EnableHTTPS        bool   `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
}

// Session contains session store parameters.
type Session struct {
	Backend   string        `env:"BACKEND" envDefault:"memory"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"3m"`
	Retention time.Duration `env:"RETENTION" envDefault:"30m"`
}

// Database contains database connection parameters. An empty DSN runs the
// collaborators in memory.
type Database struct {
	DSN string `env:"DSN"`
}

// Redis contains Redis connection parameters.
type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Storage contains receipt object storage parameters.
type Storage struct {
	Enabled   bool   `env:"ENABLED" envDefault:"false"`
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"afritokeni-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"afritokeni-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"ussd-receipts"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// JWT contains gateway token parameters.
type JWT struct {
	Secret string        `env:"SECRET" envDefault:"devsecret"`
	TTL    time.Duration `env:"TTL" envDefault:"720h"`
}

// Notify contains notification delivery parameters.
type Notify struct {
	Backend string `env:"BACKEND" envDefault:"log"`
	Queue   string `env:"QUEUE" envDefault:"sms:outbox"`
}

// USSD contains menu engine parameters.
type USSD struct {
	DialCode    string `env:"DIAL_CODE" envDefault:"*229#"`
	CountryCode string `env:"COUNTRY_CODE" envDefault:"256"`
	Currency    string `env:"CURRENCY" envDefault:"UGX"`
	DemoMode    bool   `env:"DEMO_MODE" envDefault:"false"`
	TariffsFile string `env:"TARIFFS_FILE"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// LoadTariffs reads the tariff file over the defaults. An empty path yields
// the defaults.
func LoadTariffs(path string) (model.Tariffs, error) {
	tariffs := model.DefaultTariffs()
	if path == "" {
		return tariffs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.Tariffs{}, fmt.Errorf("failed to read tariffs: %w", err)
	}
	if err := yaml.Unmarshal(data, &tariffs); err != nil {
		return model.Tariffs{}, fmt.Errorf("failed to parse tariffs: %w", err)
	}

	return tariffs, nil
}
