// Package main is the entry point for the glasspane telemetry daemon.
// It loads configuration, builds the orchestrator, and runs the collection
// loop in the foreground until interrupted. The overlay renderer consumes
// the published snapshot through the shared handle; standalone runs log a
// periodic snapshot summary instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/glasspane/telemetry/internal/config"
	"github.com/glasspane/telemetry/internal/orchestrator"
	"github.com/glasspane/telemetry/internal/pathguard"
	"github.com/glasspane/telemetry/internal/sysstat"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	configPath  = flag.String("config", "telemetry.yaml", "Path to configuration file")
	showVersion = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("telemetryd %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	logger.Info("Starting telemetryd",
		zap.String("version", version),
		zap.Duration("update_interval", cfg.General.UpdateInterval.Duration))

	if err := cfg.Validate(pathguard.IsSafe); err != nil {
		var unsafeErr *config.UnsafePathsError
		if errors.As(err, &unsafeErr) {
			// The collectors deny these again at read time; surfacing
			// ACCESS DENIED values beats refusing to start.
			logger.Warn("configuration references unsafe paths",
				zap.Strings("paths", unsafeErr.Paths))
		} else {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)

	orch := orchestrator.New(cfg, sysstat.NewProvider(), pathguard.IsSafe, logger)
	done := make(chan struct{})
	go func() {
		orch.Run(ctx)
		close(done)
	}()

	// SIGHUP reloads the configuration file and hands the result to the
	// running loop; it is applied at the start of the next cycle.
	go func() {
		for range hupCh {
			newCfg, err := config.Load(*configPath)
			if err != nil {
				logger.Warn("config reload failed, keeping active configuration", zap.Error(err))
				continue
			}
			orch.Commands() <- orchestrator.UpdateConfig{Config: newCfg}
		}
	}()

	// Stand-in consumer: log a snapshot summary periodically.
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			logger.Info("telemetryd stopped")
			return
		case <-ticker.C:
			snap := orch.Shared().Load()
			logger.Info("current snapshot",
				zap.String("day", snap.DayOfWeek),
				zap.String("summary", snap.Summary()))
		}
	}
}

// initLogger creates a zap logger based on the configuration. It outputs
// to the console (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)
	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			))
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
