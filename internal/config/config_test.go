package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/serroba/pdfcraft/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]

		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, config.BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 50, cfg.Editor.HistoryLimit)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout.Duration)
}

func TestParse(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse(`
[server]
addr = ":9000"
shutdown_timeout = "3s"

[storage]
backend = "sqlite"
sqlite_path = "/tmp/docs.db"

[session]
idle_timeout = "2m"

[logging]
level = "debug"
format = "json"

[http]
allowed_origins = ["https://example.com"]
`)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout.Duration)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadHeaderTimeout.Duration)
	assert.Equal(t, config.BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Session.IdleTimeout.Duration)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{"https://example.com"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "Calibri", cfg.Editor.FontFamily)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want error
	}{
		{"unknown key", "[server]\nport = 1", config.ErrUnknownKey},
		{"backend", "[storage]\nbackend = \"mongo\"", config.ErrInvalidConfig},
		{"log level", "[logging]\nlevel = \"loud\"", config.ErrInvalidConfig},
		{"log format", "[logging]\nformat = \"xml\"", config.ErrInvalidConfig},
		{"history", "[editor]\nhistory_limit = 0", config.ErrInvalidConfig},
		{"redis addr", "[storage]\nbackend = \"redis\"\nredis_addr = \"\"", config.ErrInvalidConfig},
		{"body size", "[http]\nmax_body_bytes = 0", config.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Parse(tt.data)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_BadDuration(t *testing.T) {
	t.Parallel()

	_, err := config.Parse("[session]\nidle_timeout = \"soon\"")
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	err := cfg.ApplyEnv(env(map[string]string{
		"PDFCRAFT_ADDR":            ":7000",
		"PDFCRAFT_STORAGE_BACKEND": "redis",
		"PDFCRAFT_REDIS_ADDR":      "cache:6379",
		"PDFCRAFT_LOG_LEVEL":       "warn",
		"PDFCRAFT_PDF_ENABLED":     "true",
		"PDFCRAFT_ALLOWED_ORIGINS": "https://a.test, ,https://b.test",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, config.BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.PDF.Enabled)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.HTTP.AllowedOrigins)
}

func TestApplyEnv_BadBool(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	err := cfg.ApplyEnv(env(map[string]string{"PDFCRAFT_PDF_ENABLED": "maybe"}))
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Server.Addr)
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pdfcraft.toml")
	writeFile(t, path, "[editor]\nhistory_limit = 7\n")

	l := config.NewLoader(path)
	require.Nil(t, l.Config())

	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Editor.HistoryLimit)
	assert.Same(t, cfg, l.Config())
}

func TestLoader_WatchReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pdfcraft.toml")
	writeFile(t, path, "[editor]\nhistory_limit = 7\n")

	l := config.NewLoader(path)
	_, err := l.Load()
	require.NoError(t, err)

	changed := make(chan *config.Config, 4)
	l.OnChange(func(c *config.Config) { changed <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, l.Watch(ctx))

	defer func() { require.NoError(t, l.Close()) }()

	writeFile(t, path, "[editor]\nhistory_limit = 9\n")

	select {
	case c := <-changed:
		assert.Equal(t, 9, c.Editor.HistoryLimit)
	case <-time.After(3 * time.Second):
		t.Fatal("config was not reloaded")
	}

	assert.Equal(t, 9, l.Config().Editor.HistoryLimit)
}

func TestLoader_BadReloadKeepsConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pdfcraft.toml")
	writeFile(t, path, "[editor]\nhistory_limit = 7\n")

	l := config.NewLoader(path)
	_, err := l.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, l.Watch(ctx))

	defer func() { require.NoError(t, l.Close()) }()

	writeFile(t, path, "[editor]\nhistory_limit = -1\n")

	select {
	case err := <-l.Errors():
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	case <-time.After(3 * time.Second):
		t.Fatal("expected a reload error")
	}

	assert.Equal(t, 7, l.Config().Editor.HistoryLimit)
}

func TestLoader_OnChangeRunsEveryCallback(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pdfcraft.toml")
	writeFile(t, path, "[editor]\nhistory_limit = 7\n")

	l := config.NewLoader(path)
	_, err := l.Load()
	require.NoError(t, err)

	first := make(chan int, 4)
	second := make(chan int, 4)

	l.OnChange(func(c *config.Config) {
		first <- c.Editor.HistoryLimit
		// Registering from inside a callback must not block the reload.
		l.OnChange(func(*config.Config) {})
	})
	l.OnChange(func(c *config.Config) { second <- c.Editor.HistoryLimit })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, l.Watch(ctx))

	defer func() { require.NoError(t, l.Close()) }()

	writeFile(t, path, "[editor]\nhistory_limit = 11\n")

	for _, ch := range []chan int{first, second} {
		select {
		case limit := <-ch:
			assert.Equal(t, 11, limit)
		case <-time.After(3 * time.Second):
			t.Fatal("callback was not run")
		}
	}
}
