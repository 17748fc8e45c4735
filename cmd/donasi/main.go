package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"donasi/internal/cli"
	"donasi/internal/content"
	apphttp "donasi/internal/http"
	"donasi/internal/log"
	"donasi/internal/middleware/ratelimit"
	"donasi/internal/report"
)

func main() {
	bootstrap := cli.SetupLogger("info", "text")
	cli.LoadEnvFile(bootstrap)
	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	res, err := cli.InitReader(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize sheet reader",
			log.FieldError, err.Error(),
			"backend", cfg.DataBackend)
		os.Exit(1)
	}

	contentLogger := logger.WithComponent(log.ComponentContent)
	site, err := content.Load(cfg.SiteContentFile)
	if err != nil {
		contentLogger.Error("Failed to load site content",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration,
			"file", cfg.SiteContentFile)
		os.Exit(1)
	}
	contentLogger.Info("Site content loaded", "title", site.Title, "embedded", cfg.SiteContentFile == "")

	svc := report.NewService(res.Reader, cli.ReportConfig(cfg))
	board := report.NewBoard(svc, logger)

	rl := ratelimit.DefaultConfig()
	rl.RequestsPerMinute = cfg.RateLimitPerMinute

	srv := apphttp.NewServer(apphttp.Options{
		Addr:      ":" + cfg.Port,
		Board:     board,
		Site:      site,
		Logger:    logger,
		RateLimit: rl,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) error {
		err := srv.Shutdown(ctx)
		if res.Cleanup != nil {
			err = errors.Join(err, res.Cleanup())
		}
		return err
	})

	logger.Info("Starting donasi server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"spreadsheet_id", cfg.SpreadsheetID)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
