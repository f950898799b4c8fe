package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"flight_tracker/internal/config"
	"flight_tracker/internal/daemon"

	"gopkg.in/natefinch/lumberjack.v2"
)

func initLogger(cfg *config.Config) {
	var logLevel slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var w io.Writer = os.Stdout
	if cfg.Log.File != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    32, // MB
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		}
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML)")
	flag.Parse()

	if *configPath != "" {
		os.Setenv("FLIGHT_TRACKER_CONFIG_PATH", *configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		// Logger isn't initialized yet
		basicLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		basicLogger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	d, err := daemon.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize daemon", "error", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := d.Start(); err != nil {
		slog.Error("Failed to start daemon", "error", err)
		os.Exit(1)
	}

	exitCode := 0
	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig.String())
	case <-d.Done():
		slog.Error("Daemon exited unexpectedly", "error", d.Err())
		exitCode = 1
	}

	if err := d.Stop(); err != nil {
		slog.Error("Daemon stopped with error", "error", err)
		exitCode = 1
	}

	slog.Info("Shutdown complete")
	os.Exit(exitCode)
}
