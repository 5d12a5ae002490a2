// Package config loads the service configuration from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Errors returned while loading configuration.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrUnknownKey    = errors.New("unknown configuration key")
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "PDFCRAFT_"

// Duration is a time.Duration written as "30s" or "5m" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	d.Duration = v

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Editor  EditorConfig  `toml:"editor"`
	Storage StorageConfig `toml:"storage"`
	Session SessionConfig `toml:"session"`
	Logging LoggingConfig `toml:"logging"`
	PDF     PDFConfig     `toml:"pdf"`
	HTTP    HTTPConfig    `toml:"http"`
}

type ServerConfig struct {
	Addr              string   `toml:"addr"`
	ReadHeaderTimeout Duration `toml:"read_header_timeout"`
	ShutdownTimeout   Duration `toml:"shutdown_timeout"`
}

// EditorConfig seeds new sessions.
type EditorConfig struct {
	HistoryLimit int    `toml:"history_limit"`
	CharsPerPage int    `toml:"chars_per_page"`
	FontFamily   string `toml:"font_family"`
	FontSize     int    `toml:"font_size"`
	Theme        string `toml:"theme"`
	PageSize     string `toml:"page_size"`
}

type StorageConfig struct {
	Backend       string `toml:"backend"`
	SQLitePath    string `toml:"sqlite_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
	AutosaveEvery int    `toml:"autosave_every"` // 0 saves only on export and close
}

type SessionConfig struct {
	IdleTimeout Duration `toml:"idle_timeout"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

// PDFConfig controls server-side printing through headless Chrome.
type PDFConfig struct {
	Enabled    bool     `toml:"enabled"`
	ChromePath string   `toml:"chrome_path"`
	NoSandbox  bool     `toml:"no_sandbox"`
	Timeout    Duration `toml:"timeout"`
}

type HTTPConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
	RateLimit      float64  `toml:"rate_limit"` // requests per second per user; 0 disables
	RateBurst      int      `toml:"rate_burst"`
	MaxBodyBytes   int64    `toml:"max_body_bytes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{10 * time.Second},
			ShutdownTimeout:   Duration{15 * time.Second},
		},
		Editor: EditorConfig{
			HistoryLimit: 50,
			CharsPerPage: 3000,
			FontFamily:   "Calibri",
			FontSize:     11,
			Theme:        "office",
			PageSize:     "letter",
		},
		Storage: StorageConfig{
			Backend:       BackendMemory,
			SQLitePath:    "pdfcraft.db",
			RedisAddr:     "localhost:6379",
			RedisPrefix:   "pdfcraft:",
			AutosaveEvery: 20,
		},
		Session: SessionConfig{IdleTimeout: Duration{30 * time.Minute}},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		PDF:     PDFConfig{Timeout: Duration{30 * time.Second}},
		HTTP: HTTPConfig{
			AllowedOrigins: []string{"*"},
			RateLimit:      20,
			RateBurst:      40,
			MaxBodyBytes:   10 << 20,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes TOML text over the defaults without consulting the environment.
func Parse(data string) (*Config, error) {
	cfg := Default()

	if err := cfg.decode(data); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read config: %w", err)
	}

	return c.decode(string(data))
}

func (c *Config) decode(data string) error {
	md, err := toml.Decode(data, c)
	if err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}

	return nil
}

// ApplyEnv overrides settings from PDFCRAFT_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	str("ADDR", &c.Server.Addr)
	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("SQLITE_PATH", &c.Storage.SQLitePath)
	str("REDIS_ADDR", &c.Storage.RedisAddr)
	str("REDIS_PASSWORD", &c.Storage.RedisPassword)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)
	str("CHROME_PATH", &c.PDF.ChromePath)

	if v, ok := lookup(EnvPrefix + "PDF_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sPDF_ENABLED=%q", ErrInvalidConfig, EnvPrefix, v)
		}

		c.PDF.Enabled = enabled
	}

	if v, ok := lookup(EnvPrefix + "ALLOWED_ORIGINS"); ok {
		c.HTTP.AllowedOrigins = splitList(v)
	}

	return nil
}

func splitList(v string) []string {
	var out []string

	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

var (
	backends   = []string{BackendMemory, BackendSQLite, BackendRedis}
	logFormats = []string{"text", "json"}
	logLevels  = []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic"}
)

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidConfig)
	case c.Editor.HistoryLimit < 1:
		return fmt.Errorf("%w: editor.history_limit must be positive", ErrInvalidConfig)
	case c.Editor.CharsPerPage < 1:
		return fmt.Errorf("%w: editor.chars_per_page must be positive", ErrInvalidConfig)
	case !slices.Contains(backends, c.Storage.Backend):
		return fmt.Errorf("%w: storage.backend %q", ErrInvalidConfig, c.Storage.Backend)
	case c.Storage.Backend == BackendSQLite && c.Storage.SQLitePath == "":
		return fmt.Errorf("%w: storage.sqlite_path is empty", ErrInvalidConfig)
	case c.Storage.Backend == BackendRedis && c.Storage.RedisAddr == "":
		return fmt.Errorf("%w: storage.redis_addr is empty", ErrInvalidConfig)
	case c.Storage.AutosaveEvery < 0:
		return fmt.Errorf("%w: storage.autosave_every is negative", ErrInvalidConfig)
	case !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)):
		return fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, c.Logging.Level)
	case !slices.Contains(logFormats, c.Logging.Format):
		return fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, c.Logging.Format)
	case c.HTTP.RateLimit < 0 || c.HTTP.RateBurst < 0:
		return fmt.Errorf("%w: http rate limits are negative", ErrInvalidConfig)
	case c.HTTP.MaxBodyBytes < 1:
		return fmt.Errorf("%w: http.max_body_bytes must be positive", ErrInvalidConfig)
	}

	return nil
}
