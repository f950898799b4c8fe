package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FLIGHT_TRACKER_CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.FeedHost)
	assert.Equal(t, 30003, cfg.FeedPort)
	assert.Equal(t, "localhost:30003", cfg.FeedAddr())
	assert.Equal(t, 2500.0, cfg.RangeRadiusMeters)
	assert.Equal(t, 60*time.Second, cfg.StaleAfter)
	assert.Equal(t, 10*time.Second, cfg.SweepInterval)
	assert.Equal(t, time.Second, cfg.ReportInterval)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Registry.CSVPaths)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
feed_host: receiver.local
feed_port: 31003
home_latitude: 40.0
home_longitude: -75.0
range_radius_meters: 5000
stale_after: 5m
log:
  level: debug
  format: json
http:
  addr: ""
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("FLIGHT_TRACKER_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "receiver.local:31003", cfg.FeedAddr())
	assert.Equal(t, 40.0, cfg.HomeLatitude)
	assert.Equal(t, -75.0, cfg.HomeLongitude)
	assert.Equal(t, 5000.0, cfg.RangeRadiusMeters)
	assert.Equal(t, 5*time.Minute, cfg.StaleAfter)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.HTTP.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FLIGHT_TRACKER_CONFIG_PATH", "")
	t.Setenv("FLIGHT_TRACKER_FEED_HOST", "10.0.0.5")
	t.Setenv("FLIGHT_TRACKER_RANGE_RADIUS_METERS", "12000")
	t.Setenv("FLIGHT_TRACKER_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", cfg.FeedHost)
	assert.Equal(t, 12000.0, cfg.RangeRadiusMeters)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feed_port: [not, a, port"), 0o644))
	t.Setenv("FLIGHT_TRACKER_CONFIG_PATH", path)

	_, err := Load()
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		FeedHost:          "localhost",
		FeedPort:          30003,
		HomeLatitude:      40.0,
		HomeLongitude:     -75.0,
		RangeRadiusMeters: 2500,
		StaleAfter:        time.Minute,
		SweepInterval:     10 * time.Second,
		ReportInterval:    time.Second,
		DBPath:            "test.db",
		Registry:          RegistryConfig{BatchSize: 100},
		Log:               LogConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "stale_after zero disables eviction", mutate: func(c *Config) { c.StaleAfter = 0 }},
		{name: "empty db path", mutate: func(c *Config) { c.DBPath = "" }},
		{name: "missing host", mutate: func(c *Config) { c.FeedHost = "" }, wantErr: true},
		{name: "port zero", mutate: func(c *Config) { c.FeedPort = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.FeedPort = 70000 }, wantErr: true},
		{name: "home latitude out of range", mutate: func(c *Config) { c.HomeLatitude = 91 }, wantErr: true},
		{name: "negative radius", mutate: func(c *Config) { c.RangeRadiusMeters = -1 }, wantErr: true},
		{name: "negative stale_after", mutate: func(c *Config) { c.StaleAfter = -time.Second }, wantErr: true},
		{name: "zero sweep interval", mutate: func(c *Config) { c.SweepInterval = 0 }, wantErr: true},
		{name: "zero report interval", mutate: func(c *Config) { c.ReportInterval = 0 }, wantErr: true},
		{name: "registry without db", mutate: func(c *Config) { c.DBPath = ""; c.Registry.CSVPaths = []string{"a.csv"} }, wantErr: true},
		{name: "zero registry batch", mutate: func(c *Config) { c.Registry.BatchSize = 0 }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
