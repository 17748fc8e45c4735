// Package cli provides the initialization steps cmd/donasi runs before
// serving: environment, configuration, logging, the sheet reader and
// signal handling.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"donasi/internal/backend"
	"donasi/internal/config"
	"donasi/internal/log"
	"donasi/internal/report"
)

// SetupLogger builds the process logger and installs it as the slog default.
func SetupLogger(level, format string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	cfg.Format = format
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error; production sets the environment directly.
func LoadEnvFile(logger *log.Logger) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to load .env file", log.FieldError, err.Error())
	}
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// InitReader creates the configured sheet reader.
func InitReader(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger).CreateBackend(ctx, bcfg)
}

// ReportConfig maps the application config onto the aggregators' config.
func ReportConfig(cfg *config.Config) report.Config {
	return report.Config{
		Sheets: report.SheetNames{
			DonasiMasuk: cfg.Sheets.DonasiMasuk.Name,
			Realisasi:   cfg.Sheets.Realisasi.Name,
			Penyaluran:  cfg.Sheets.Penyaluran.Name,
		},
		Columns:        cfg.Columns,
		Anonymizer:     cfg.Anonymizer(),
		CurrencyPrefix: cfg.CurrencyPrefix,
		Timeout:        cfg.FetchTimeout,
	}
}

// GracefulShutdown runs cleanup once SIGINT or SIGTERM arrives.
// The returned context is cancelled when the signal is received,
// and the channel is closed once cleanup has returned.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context) error) (context.Context, <-chan struct{}) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return shutdownOn(sigChan, func() { signal.Stop(sigChan) }, logger, timeout, cleanup)
}

func shutdownOn(sigChan <-chan os.Signal, stop func(), logger *log.Logger, timeout time.Duration, cleanup func(context.Context) error) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sig := <-sigChan
		stop()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown, "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup == nil {
			return
		}
		if err := cleanup(shutdownCtx); err != nil {
			logger.Warn("Shutdown incomplete", log.FieldOperation, log.OpShutdown, log.FieldError, err.Error())
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
