package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  port: 5432
  user: app
  password: secret
  name: ticketing
  ssl_mode: disable
kafka:
  brokers: ["localhost:9092"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 20*time.Second, cfg.Gateway.Timeout())
	assert.Equal(t, 30, cfg.Booking.PaymentLockTTLSeconds)
	assert.Equal(t, 60, cfg.Booking.EventCacheTTLSeconds)
	assert.Equal(t, 5, cfg.Worker.SweepMinutes)
	assert.Equal(t, 15, cfg.Worker.StaleSessionMinutes)
	assert.Equal(t, "ticketing.events", cfg.Kafka.EventsTopic)
	assert.Equal(t, "host=localhost port=5432 user=app password=secret dbname=ticketing sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_EnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, `
gateway:
  server_key: from-file
  timeout_seconds: 5
auth:
  jwt_secret: from-file
`)
	t.Setenv("TICKETING_GATEWAY_SERVER_KEY", "SB-Mid-server-env")
	t.Setenv("TICKETING_JWT_SECRET", "env-secret")
	t.Setenv("TICKETING_DB_PASSWORD", "env-db")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "SB-Mid-server-env", cfg.Gateway.ServerKey)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "env-db", cfg.Database.Password)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout())
}

func TestApplyDefaults_LockOutlivesGatewayTimeout(t *testing.T) {
	cfg := &Config{
		Gateway: GatewayConfig{TimeoutSeconds: 45},
		Booking: BookingConfig{PaymentLockTTLSeconds: 30},
	}
	cfg.ApplyDefaults()
	assert.Equal(t, 55, cfg.Booking.PaymentLockTTLSeconds)

	cfg = &Config{Booking: BookingConfig{PaymentLockTTLSeconds: 60}}
	cfg.ApplyDefaults()
	assert.Equal(t, 60, cfg.Booking.PaymentLockTTLSeconds)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
