package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestDecode_MergesOverlayAndSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
db:
  host: localhost
  port: 5432
  password: ${DB_SECRET}
  slow_query_threshold: 100ms
jwt:
  secret: ${UNSET_PLACEHOLDER}
  ttl: 24h
server:
  port: "8080"
`)
	writeFile(t, dir, "staging.yaml", `
db:
  host: db.staging
`)
	writeFile(t, dir, "secrets.env", "# comment\nDB_SECRET=\"s3cret\"\n")

	var cfg struct {
		DB     DBConfig     `yaml:"db"`
		JWT    JWTConfig    `yaml:"jwt"`
		Server ServerConfig `yaml:"server"`
	}
	require.NoError(t, Decode("staging", dir, &cfg))

	assert.Equal(t, "db.staging", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "s3cret", cfg.DB.Password)
	assert.Equal(t, 100*time.Millisecond, cfg.DB.SlowQueryThreshold)
	assert.Equal(t, "${UNSET_PLACEHOLDER}", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestDecode_ProcessEnvWinsOverSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "jwt:\n  secret: ${LAUNCHHUB_TEST_SECRET}\n")
	writeFile(t, dir, "secrets.env", "LAUNCHHUB_TEST_SECRET=from-file\n")
	t.Setenv("LAUNCHHUB_TEST_SECRET", "from-env")

	var cfg struct {
		JWT JWTConfig `yaml:"jwt"`
	}
	require.NoError(t, Decode("", dir, &cfg))
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoadConfig_MissingBase(t *testing.T) {
	_, err := LoadConfig("local", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base.yaml")
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4317")

	db := DBConfig{Port: 5432}
	OverrideDBFromEnv(&db)
	assert.Equal(t, 6543, db.Port)

	var rc RedisConfig
	OverrideRedisFromEnv(&rc)
	assert.Equal(t, "cache:6379", rc.Addr)

	var oc OtelConfig
	OverrideOtelFromEnv(&oc)
	assert.True(t, oc.Enabled)
	assert.Equal(t, "collector:4317", oc.Endpoint)
}
