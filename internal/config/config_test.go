package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, TransportStdio, cfg.Server.Transport)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "foreman.yaml", `
store:
  driver: postgres
  dsn: postgres://localhost/foreman
  query_timeout: 5s
server:
  transport: http
  addr: ":9090"
cache:
  ttl: 2m
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Store.QueryTimeout)
	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Log.Level, "unset keys keep their defaults")
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", "store: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FOREMAN_DB_DRIVER": "postgres",
		"FOREMAN_DB_DSN":    "postgres://db/foreman",
		"FOREMAN_CACHE_TTL": "30s",
		"FOREMAN_LOG_LEVEL": "",
	}
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://db/foreman", cfg.Store.DSN)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Log.Level, "empty variables are ignored")

	env["FOREMAN_CACHE_TTL"] = "soon"
	assert.Error(t, cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "foreman.yaml", "log:\n  level: debug\n")
	t.Setenv("FOREMAN_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestFlagsOverrideEverything(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--transport", "sse", "--db-max-conns", "4"}))

	cfg := Default()
	cfg.Server.Addr = "localhost:1"
	require.NoError(t, cfg.ApplyFlags(fs))
	assert.Equal(t, TransportSSE, cfg.Server.Transport)
	assert.Equal(t, 4, cfg.Store.MaxOpenConns)
	assert.Equal(t, "localhost:1", cfg.Server.Addr, "unset flags do not override")
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "FOREMAN_TEST_DOTENV=from-file\n")
	t.Setenv("FOREMAN_TEST_DOTENV", "")
	os.Unsetenv("FOREMAN_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("FOREMAN_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }},
		{"empty dsn", func(c *Config) { c.Store.DSN = " " }},
		{"unknown transport", func(c *Config) { c.Server.Transport = "grpc" }},
		{"http without addr", func(c *Config) { c.Server.Transport = TransportHTTP; c.Server.Addr = "" }},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }},
		{"negative timeout", func(c *Config) { c.Store.QueryTimeout = -time.Second }},
		{"negative conns", func(c *Config) { c.Store.MaxOpenConns = -1 }},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
