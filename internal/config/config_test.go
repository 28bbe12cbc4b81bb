package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "random", cfg.Booking.DistanceEstimator)
	assert.Equal(t, "inr", cfg.Payment.Currency)
	assert.Equal(t, 5*time.Minute, cfg.UserDirectory.CacheTTL)
}

func TestLoad_YAMLThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "booking.yaml")
	body := `
server:
  port: "9000"
database:
  driver: pgx
  dbname: rides
events:
  broker: kafka
  kafka_brokers: ["k1:9092", "k2:9092"]
booking:
  distance_estimator: haversine
  accept_lock_ttl: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("KAFKA_BROKERS", "a:1, b:2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port, "env wins over file")
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "rides", cfg.Database.DBName)
	assert.Equal(t, "localhost", cfg.Database.Host, "unset keys keep defaults")
	assert.Equal(t, "kafka", cfg.Events.Broker)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, "haversine", cfg.Booking.DistanceEstimator)
	assert.Equal(t, 3*time.Second, cfg.Booking.AcceptLockTTL)
}

func TestLoad_RejectsUnknownBroker(t *testing.T) {
	t.Setenv("EVENTS_BROKER", "carrier-pigeon")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown events broker")
}

func TestLoad_RejectsNegativeQueueSize(t *testing.T) {
	t.Setenv("EVENTS_QUEUE_SIZE", "-1")

	_, err := Load()
	assert.ErrorContains(t, err, "queue size")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
