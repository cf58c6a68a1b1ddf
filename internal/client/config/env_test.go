package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseEnv_FromEnvironment(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Chdir(t.TempDir())

	t.Setenv("READKEEPER_LISTEN_ADDR", "0.0.0.0:1")
	t.Setenv("READKEEPER_PROGRESS_POLL_INTERVAL", "500ms")
	t.Setenv("READKEEPER_ANCHOR_OFFSET", "72.5")
	t.Setenv("READKEEPER_VIEW_CACHE_SIZE", "16")

	cfg := defaults()
	require.NoError(t, parseEnv(&cfg))

	assert.Equal(t, "0.0.0.0:1", cfg.ListenAddr)
	assert.Equal(t, 500*time.Millisecond, cfg.ProgressPollInterval)
	assert.Equal(t, 72.5, cfg.AnchorOffset)
	assert.Equal(t, 16, cfg.ViewCacheSize)
}

func TestParseEnv_ImplicitDotEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", "READKEEPER_CACHE_VERSION=v9\n")
	t.Cleanup(func() { os.Unsetenv("READKEEPER_CACHE_VERSION") })

	cfg := defaults()
	require.NoError(t, parseEnv(&cfg))
	assert.Equal(t, "v9", cfg.CacheVersion)
}

func TestParseEnv_Errors(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Chdir(t.TempDir())

	t.Run("explicit env file missing", func(t *testing.T) {
		os.Args = []string{"testbin", "-e", "does-not-exist.env"}
		cfg := defaults()
		require.Error(t, parseEnv(&cfg))
	})

	t.Run("bad duration", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("READKEEPER_REQUEST_TIMEOUT", "soon")
		cfg := defaults()
		require.ErrorContains(t, parseEnv(&cfg), "READKEEPER_REQUEST_TIMEOUT")
	})

	t.Run("bad anchor", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("READKEEPER_ANCHOR_OFFSET", "top")
		cfg := defaults()
		require.ErrorContains(t, parseEnv(&cfg), "READKEEPER_ANCHOR_OFFSET")
	})
}
