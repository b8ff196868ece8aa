// Package config loads menulens settings from config.toml, .env files and
// MENULENS_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rotisserie/eris"
)

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Cache  CacheConfig  `toml:"cache"`
	Engine EngineConfig `toml:"engine"`
	Report ReportConfig `toml:"report"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr    string `toml:"addr"`
	DevMode bool   `toml:"dev_mode"`
}

// DataConfig says where listings and reference files come from.
type DataConfig struct {
	Source    string `toml:"source"` // csv | postgres | sqlite
	Path      string `toml:"path"`
	DSN       string `toml:"dsn"`
	Query     string `toml:"query"`
	Delimiter string `toml:"delimiter"`
	Universe  string `toml:"universe"`
	Master    string `toml:"master"`
	Tables    string `toml:"tables"`
}

// CacheConfig selects the record cache.
type CacheConfig struct {
	Backend    string `toml:"backend"` // none | memory | redis
	RedisURL   string `toml:"redis_url"`
	Prefix     string `toml:"prefix"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// EngineConfig tunes dashboard sizes and parallelism.
type EngineConfig struct {
	TopN         int `toml:"top_n"`
	HeatmapRows  int `toml:"heatmap_rows"`
	HeatmapCols  int `toml:"heatmap_cols"`
	CoOccurrence int `toml:"co_occurrence"`
	Workers      int `toml:"workers"`
}

// ReportConfig sets number formatting.
type ReportConfig struct {
	Locale   string `toml:"locale"`
	Currency string `toml:"currency"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Data source kinds.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Data: DataConfig{
			Source:    SourceCSV,
			Path:      "data/listings.csv",
			Query:     "SELECT * FROM listings",
			Delimiter: ",",
		},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			Prefix:     "menulens:",
			TTLSeconds: 900,
		},
		Engine: EngineConfig{
			TopN:         10,
			HeatmapRows:  10,
			HeatmapCols:  5,
			CoOccurrence: 5,
		},
		Report: ReportConfig{Locale: "it", Currency: "EUR"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, then applies environment overrides. A
// missing file is not an error. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, eris.Wrapf(err, "config: read %s", path)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, eris.Wrapf(err, "config: parse %s", path)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return eris.Wrapf(err, "config: load %s", p)
		}
	}
	return nil
}

// Save writes cfg as TOML.
func Save(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "config: encode")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "config: write %s", path)
	}
	return nil
}

// Validate rejects unknown source kinds, cache backends and delimiters.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceCSV, SourcePostgres, SourceSQLite:
	default:
		return eris.Errorf("config: unknown data source %q", c.Data.Source)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return eris.New("config: redis cache needs redis_url")
		}
	default:
		return eris.Errorf("config: unknown cache backend %q", c.Cache.Backend)
	}
	if c.Data.Delimiter != "" && utf8.RuneCountInString(c.Data.Delimiter) != 1 {
		return eris.Errorf("config: delimiter must be one character, got %q", c.Data.Delimiter)
	}
	return nil
}

// Delim returns the CSV delimiter rune.
func (d DataConfig) Delim() rune {
	if d.Delimiter == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(d.Delimiter)
	return r
}

// TTL returns the cache lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnv("MENULENS_ADDR", c.Server.Addr)
	c.Server.DevMode = getEnvBool("MENULENS_DEV_MODE", c.Server.DevMode)

	c.Data.Source = strings.ToLower(getEnv("MENULENS_DATA_SOURCE", c.Data.Source))
	c.Data.Path = getEnv("MENULENS_DATA_PATH", c.Data.Path)
	c.Data.DSN = getEnv("MENULENS_DSN", c.Data.DSN)
	c.Data.Query = getEnv("MENULENS_QUERY", c.Data.Query)
	c.Data.Universe = getEnv("MENULENS_UNIVERSE", c.Data.Universe)
	c.Data.Master = getEnv("MENULENS_MASTER", c.Data.Master)
	c.Data.Tables = getEnv("MENULENS_TABLES", c.Data.Tables)

	c.Cache.Backend = strings.ToLower(getEnv("MENULENS_CACHE", c.Cache.Backend))
	c.Cache.RedisURL = getEnv("MENULENS_REDIS_URL", c.Cache.RedisURL)
	c.Cache.TTLSeconds = getEnvInt("MENULENS_CACHE_TTL", c.Cache.TTLSeconds)

	c.Engine.TopN = getEnvInt("MENULENS_TOP_N", c.Engine.TopN)
	c.Engine.Workers = getEnvInt("MENULENS_WORKERS", c.Engine.Workers)

	c.Log.Level = getEnv("MENULENS_LOG_LEVEL", c.Log.Level)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
