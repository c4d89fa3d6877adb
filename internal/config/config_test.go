package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afritokeni/ussd-engine/internal/model"
)

func TestNewConfig_DefaultValues(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.LogLevel)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, false, cfg.HTTP.EnableHTTPS)
	assert.Equal(t, false, cfg.GRPC.Enabled)
	assert.Equal(t, "50051", cfg.GRPC.Port)
	assert.Equal(t, "cert.pem", cfg.GRPC.CertFileName)
	assert.Equal(t, "key.pem", cfg.GRPC.PrivateKeyFileName)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 3*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Session.Retention)
	assert.Equal(t, "", cfg.Database.DSN)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, false, cfg.Storage.Enabled)
	assert.Equal(t, "ussd-receipts", cfg.Storage.Bucket)
	assert.Equal(t, "devsecret", cfg.JWT.Secret)
	assert.Equal(t, "log", cfg.Notify.Backend)
	assert.Equal(t, "*229#", cfg.USSD.DialCode)
	assert.Equal(t, "256", cfg.USSD.CountryCode)
	assert.Equal(t, "UGX", cfg.USSD.Currency)
	assert.Equal(t, false, cfg.USSD.DemoMode)
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
	}{
		{
			name: "log level override",
			envVars: map[string]string{
				"LOG_LEVEL": "-4",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, -4, cfg.LogLevel)
			},
		},
		{
			name: "session config override",
			envVars: map[string]string{
				"SESSION_BACKEND":   "redis",
				"SESSION_TIMEOUT":   "90s",
				"SESSION_RETENTION": "1h",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "redis", cfg.Session.Backend)
				assert.Equal(t, 90*time.Second, cfg.Session.Timeout)
				assert.Equal(t, time.Hour, cfg.Session.Retention)
			},
		},
		{
			name: "grpc config override",
			envVars: map[string]string{
				"GRPC_ENABLED":      "true",
				"GRPC_PORT":         "9090",
				"GRPC_ENABLE_HTTPS": "true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, true, cfg.GRPC.Enabled)
				assert.Equal(t, "9090", cfg.GRPC.Port)
				assert.Equal(t, true, cfg.GRPC.EnableHTTPS)
			},
		},
		{
			name: "http config override",
			envVars: map[string]string{
				"HTTP_PORT":          "8443",
				"HTTP_ENABLE_HTTPS":  "true",
				"HTTP_REQUIRE_TOKEN": "true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "8443", cfg.HTTP.Port)
				assert.Equal(t, true, cfg.HTTP.EnableHTTPS)
				assert.Equal(t, true, cfg.HTTP.RequireToken)
			},
		},
		{
			name: "ussd config override",
			envVars: map[string]string{
				"USSD_DIAL_CODE":    "*384*1#",
				"USSD_COUNTRY_CODE": "254",
				"USSD_CURRENCY":     "KES",
				"USSD_DEMO_MODE":    "true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "*384*1#", cfg.USSD.DialCode)
				assert.Equal(t, "254", cfg.USSD.CountryCode)
				assert.Equal(t, "KES", cfg.USSD.Currency)
				assert.Equal(t, true, cfg.USSD.DemoMode)
			},
		},
		{
			name: "storage config override",
			envVars: map[string]string{
				"MINIO_ENABLED":     "true",
				"MINIO_ENDPOINT":    "minio.example.com:9000",
				"MINIO_BUCKET_NAME": "custom-bucket",
				"MINIO_USE_SSL":     "true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, true, cfg.Storage.Enabled)
				assert.Equal(t, "minio.example.com:9000", cfg.Storage.Endpoint)
				assert.Equal(t, "custom-bucket", cfg.Storage.Bucket)
				assert.Equal(t, true, cfg.Storage.UseSSL)
			},
		},
		{
			name: "redis and notify override",
			envVars: map[string]string{
				"REDIS_ADDR":     "redis:6379",
				"REDIS_DB":       "2",
				"NOTIFY_BACKEND": "redis",
				"NOTIFY_QUEUE":   "sms:test",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "redis:6379", cfg.Redis.Addr)
				assert.Equal(t, 2, cfg.Redis.DB)
				assert.Equal(t, "redis", cfg.Notify.Backend)
				assert.Equal(t, "sms:test", cfg.Notify.Queue)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := NewConfig()
			require.NoError(t, err)

			tt.expected(cfg)
		})
	}
}

func TestLoadTariffs(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		tariffs, err := LoadTariffs("")
		require.NoError(t, err)
		assert.Equal(t, model.DefaultTariffs(), tariffs)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tariffs.yaml")
		content := `
send_fee_percent: 1.5
withdraw:
  min: 5000
  max: 1000000
code_validity: 12h
rates:
  BTC: 160000000
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		tariffs, err := LoadTariffs(path)
		require.NoError(t, err)
		assert.Equal(t, 1.5, tariffs.SendFeePercent)
		assert.Equal(t, model.Limits{Min: 5000, Max: 1000000}, tariffs.Withdraw)
		assert.Equal(t, 12*time.Hour, tariffs.CodeValidity)
		assert.Equal(t, float64(160000000), tariffs.Rates[model.AssetBTC])
		assert.Equal(t, model.DefaultTariffs().Deposit, tariffs.Deposit)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTariffs(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read tariffs")
	})
}
