package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("BCRYPT_COST", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("ttl", func(t *testing.T) {
		t.Setenv("TOKEN_TTL", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "TOKEN_TTL")
	})
	t.Run("cost", func(t *testing.T) {
		t.Setenv("BCRYPT_COST", "high")
		_, err := Load()
		assert.ErrorContains(t, err, "BCRYPT_COST")
	})
	t.Run("backend", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "postgres")
		_, err := Load()
		assert.ErrorContains(t, err, "STORE_BACKEND")
	})
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HBNB_TEST_DOTENV=from-file\nLISTEN_ADDR=:1\n"), 0600))
	t.Setenv("LISTEN_ADDR", ":2")
	t.Cleanup(func() { _ = os.Unsetenv("HBNB_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "from-file", os.Getenv("HBNB_TEST_DOTENV"))
	assert.Equal(t, ":2", os.Getenv("LISTEN_ADDR"), "existing variables win")
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
