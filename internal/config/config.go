// Package config loads the server configuration.
//
// Sources are applied in order, later ones winning:
//
//  1. Default()
//  2. the YAML file (--config, or ~/.foreman/config.yaml when present)
//  3. FOREMAN_* environment variables, including those from a .env file
//  4. command-line flags registered with BindFlags
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/HendryAvila/foreman/internal/cache"
	"github.com/HendryAvila/foreman/internal/store"
	"github.com/HendryAvila/foreman/internal/telemetry"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Config is the complete server configuration.
type Config struct {
	Store  Store  `yaml:"store"`
	Server Server `yaml:"server"`
	Log    Log    `yaml:"log"`
	Cache  Cache  `yaml:"cache"`
}

// Store configures the database.
type Store struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	// QueryTimeout bounds each tool call's store work; zero disables it.
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// Server configures the MCP transport.
type Server struct {
	Transport string `yaml:"transport"`
	// Addr is the listen address for the sse and http transports.
	Addr string `yaml:"addr"`
	// MetricsAddr serves /metrics when set.
	MetricsAddr string `yaml:"metrics_addr"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Cache struct {
	TTL time.Duration `yaml:"ttl"`
}

// Default returns the built-in configuration: SQLite under ~/.foreman,
// stdio transport, info-level text logs.
func Default() Config {
	sc := store.DefaultConfig()
	return Config{
		Store:  Store{Driver: sc.Driver, DSN: sc.DSN},
		Server: Server{Transport: TransportStdio, Addr: "localhost:8080"},
		Log:    Log{Level: "info", Format: telemetry.FormatText},
		Cache:  Cache{TTL: cache.DefaultTTL},
	}
}

// DefaultPath is the config file read when no --config is given.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".foreman", "config.yaml")
}

// Load builds the configuration from defaults, the YAML file and the
// environment. An explicit path must exist; the default path is optional.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// StoreConfig converts the store section for store.New.
func (c Config) StoreConfig() store.Config {
	return store.Config{Driver: c.Store.Driver, DSN: c.Store.DSN, MaxOpenConns: c.Store.MaxOpenConns}
}

// Validate rejects unknown drivers, transports and log settings and
// non-positive limits.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("store.driver %q: must be sqlite or postgres", c.Store.Driver))
	}
	if strings.TrimSpace(c.Store.DSN) == "" {
		errs = append(errs, errors.New("store.dsn must not be empty"))
	}
	if c.Store.MaxOpenConns < 0 {
		errs = append(errs, errors.New("store.max_open_conns must not be negative"))
	}
	if c.Store.QueryTimeout < 0 {
		errs = append(errs, errors.New("store.query_timeout must not be negative"))
	}

	switch c.Server.Transport {
	case TransportStdio:
	case TransportSSE, TransportHTTP:
		if c.Server.Addr == "" {
			errs = append(errs, fmt.Errorf("server.addr is required for the %s transport", c.Server.Transport))
		}
	default:
		errs = append(errs, fmt.Errorf("server.transport %q: must be stdio, sse or http", c.Server.Transport))
	}

	if _, err := telemetry.NewLogger(c.Log.Level, c.Log.Format, io.Discard); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive"))
	}
	return errors.Join(errs...)
}

// ─── Environment and flags ───────────────────────────────────────────────────

// setting is one override available both as a FOREMAN_* variable and as a
// flag.
type setting struct {
	flag  string
	env   string
	usage string
	set   func(c *Config, v string) error
}

var settings = []setting{
	{"db-driver", "FOREMAN_DB_DRIVER", "database driver: sqlite or postgres",
		func(c *Config, v string) error { c.Store.Driver = v; return nil }},
	{"db-dsn", "FOREMAN_DB_DSN", "SQLite file path or Postgres connection string",
		func(c *Config, v string) error { c.Store.DSN = v; return nil }},
	{"db-max-conns", "FOREMAN_DB_MAX_CONNS", "maximum open database connections (0 = driver default)",
		func(c *Config, v string) error { return setInt(&c.Store.MaxOpenConns, v) }},
	{"query-timeout", "FOREMAN_QUERY_TIMEOUT", "per tool call store timeout, e.g. 5s (0 = none)",
		func(c *Config, v string) error { return setDuration(&c.Store.QueryTimeout, v) }},
	{"transport", "FOREMAN_TRANSPORT", "MCP transport: stdio, sse or http",
		func(c *Config, v string) error { c.Server.Transport = v; return nil }},
	{"addr", "FOREMAN_ADDR", "listen address for the sse and http transports",
		func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"metrics-addr", "FOREMAN_METRICS_ADDR", "serve Prometheus metrics on this address",
		func(c *Config, v string) error { c.Server.MetricsAddr = v; return nil }},
	{"log-level", "FOREMAN_LOG_LEVEL", "debug, info, warn or error",
		func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"log-format", "FOREMAN_LOG_FORMAT", "text or json",
		func(c *Config, v string) error { c.Log.Format = v; return nil }},
	{"cache-ttl", "FOREMAN_CACHE_TTL", "lifetime of cached display names, e.g. 60s",
		func(c *Config, v string) error { return setDuration(&c.Cache.TTL, v) }},
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, s := range settings {
		v, ok := lookup(s.env)
		if !ok || v == "" {
			continue
		}
		if err := s.set(c, v); err != nil {
			return fmt.Errorf("%s: %w", s.env, err)
		}
	}
	return nil
}

// BindFlags registers one flag per setting on fs.
func BindFlags(fs *pflag.FlagSet) {
	for _, s := range settings {
		fs.String(s.flag, "", s.usage+" (env "+s.env+")")
	}
}

// ApplyFlags copies every flag the user actually set onto c.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	for _, s := range settings {
		f := fs.Lookup(s.flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := s.set(c, f.Value.String()); err != nil {
			return fmt.Errorf("--%s: %w", s.flag, err)
		}
	}
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid integer %q", v)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid duration %q", v)
	}
	*dst = d
	return nil
}
