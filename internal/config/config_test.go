package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(`
server:
  port: "9000"
jwt:
  secret: ${JWT_SIGNING_KEY}
  ttl: 12h
export:
  stakeholder_sections: [validation, marketing]
cache:
  insight_ttl: 30s
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secrets.env"), []byte("JWT_SIGNING_KEY=topsecret\n"), 0o600))

	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVER_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "topsecret", cfg.JWT.Secret)
	assert.Equal(t, 12*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, []string{"validation", "marketing"}, cfg.Export.StakeholderSections)
	assert.Equal(t, 30*time.Second, cfg.Cache.InsightTTL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.DedupTTL)
	assert.Equal(t, []string{"progress.#", "project.#"}, cfg.Consumer.RoutingKeys)
	assert.Equal(t, "launchhub.progress", cfg.Consumer.QueueName("progress.#"))
	assert.Equal(t, 5, cfg.Outbox.MaxRetries)
	assert.Equal(t, "launchhub", cfg.Otel.ServiceName)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("server:\n  port: \"8080\"\n"), 0o600))
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "jwt.secret")
}
