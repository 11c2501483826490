package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DB_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  host: filehost
  name: school
gemini:
  model: gemini-from-file
session:
  ttl: 2h
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DB_HOST", "envhost")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "envhost", cfg.DBHost)
	assert.Equal(t, "school", cfg.DBName)
	assert.Equal(t, "gemini-from-file", cfg.GeminiModel)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "s"
	assert.Error(t, cfg.Validate())

	cfg.GeminiKey = "k"
	assert.NoError(t, cfg.Validate())
}

func TestConnString(t *testing.T) {
	cfg := &Config{DBHost: "h", DBPort: 1, DBUser: "u", DBPassword: "p", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", cfg.ConnString())
}
