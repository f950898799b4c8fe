package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"flight_tracker/internal/geo"

	"github.com/spf13/viper"
)

// Config holds all configuration for the daemon
type Config struct {
	FeedHost          string
	FeedPort          int
	HomeLatitude      float64
	HomeLongitude     float64
	RangeRadiusMeters float64
	StaleAfter        time.Duration // 0 keeps aircraft forever
	SweepInterval     time.Duration
	ReportInterval    time.Duration
	DBPath            string // empty disables sightings and registry
	Registry          RegistryConfig
	HTTP              HTTPConfig
	Log               LogConfig
}

// RegistryConfig holds aircraft registry import settings
type RegistryConfig struct {
	CSVPaths  []string
	BatchSize int
}

// HTTPConfig holds the status server settings
type HTTPConfig struct {
	Addr string // empty disables the server
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	File   string // optional rotating log file; stdout when empty
}

// FeedAddr returns the feed's host:port
func (c *Config) FeedAddr() string {
	return net.JoinHostPort(c.FeedHost, strconv.Itoa(c.FeedPort))
}

// Load loads configuration from config file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("feed_host", "localhost")
	v.SetDefault("feed_port", 30003)
	v.SetDefault("home_latitude", 0.0)
	v.SetDefault("home_longitude", 0.0)
	v.SetDefault("range_radius_meters", 2500.0)
	v.SetDefault("stale_after", "60s")
	v.SetDefault("sweep_interval", "10s")
	v.SetDefault("report_interval", "1s")
	v.SetDefault("db_path", "flight_tracker.db")
	v.SetDefault("registry.csv_paths", []string{})
	v.SetDefault("registry.batch_size", 5000)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/flight_tracker")
	v.AddConfigPath(".")

	if configPath := os.Getenv("FLIGHT_TRACKER_CONFIG_PATH"); configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: defaults + env vars
	}

	v.SetEnvPrefix("FLIGHT_TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		FeedHost:          v.GetString("feed_host"),
		FeedPort:          v.GetInt("feed_port"),
		HomeLatitude:      v.GetFloat64("home_latitude"),
		HomeLongitude:     v.GetFloat64("home_longitude"),
		RangeRadiusMeters: v.GetFloat64("range_radius_meters"),
		StaleAfter:        v.GetDuration("stale_after"),
		SweepInterval:     v.GetDuration("sweep_interval"),
		ReportInterval:    v.GetDuration("report_interval"),
		DBPath:            v.GetString("db_path"),
		Registry: RegistryConfig{
			CSVPaths:  v.GetStringSlice("registry.csv_paths"),
			BatchSize: v.GetInt("registry.batch_size"),
		},
		HTTP: HTTPConfig{
			Addr: v.GetString("http.addr"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration values
func validate(cfg *Config) error {
	if cfg.FeedHost == "" {
		return fmt.Errorf("feed_host is required")
	}

	if cfg.FeedPort <= 0 || cfg.FeedPort > 65535 {
		return fmt.Errorf("feed_port must be between 1 and 65535, got %d", cfg.FeedPort)
	}

	if !geo.ValidCoordinate(cfg.HomeLatitude, cfg.HomeLongitude) {
		return fmt.Errorf("invalid home coordinate: %v,%v", cfg.HomeLatitude, cfg.HomeLongitude)
	}

	if cfg.RangeRadiusMeters < 0 {
		return fmt.Errorf("range_radius_meters must not be negative")
	}

	if cfg.StaleAfter < 0 {
		return fmt.Errorf("stale_after must not be negative")
	}

	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be greater than 0")
	}

	if cfg.ReportInterval <= 0 {
		return fmt.Errorf("report_interval must be greater than 0")
	}

	if len(cfg.Registry.CSVPaths) > 0 && cfg.DBPath == "" {
		return fmt.Errorf("registry.csv_paths requires db_path")
	}

	if cfg.Registry.BatchSize <= 0 {
		return fmt.Errorf("registry.batch_size must be greater than 0")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[strings.ToLower(cfg.Log.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	return nil
}
