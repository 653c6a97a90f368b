package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesdash/internal/api"
	"salesdash/internal/config"
	"salesdash/internal/engine"
	applog "salesdash/internal/log"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func main() {
	v := config.New()

	rootCmd := &cobra.Command{
		Use:   "server",
		Short: "Serve the sales dashboard API",
		Long: `Serves filtered sales views (category, region, segment, monthly,
hierarchy and sub-category by month) over HTTP.

The default data file is loaded in the background; the API answers 503 until
it is ready. A new dataset can be uploaded with POST /api/dataset.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg := config.Load(v)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.String(config.KeyPort, "8080", "HTTP port")
	flags.String(config.KeyDataFile, "Superstore.xls", "dataset loaded at startup")
	flags.Bool(config.KeyStrictParse, false, "reject files containing unparseable rows")
	flags.Int(config.KeyRowPageLimit, 500, "maximum rows per /api/rows page")
	flags.Int64(config.KeyMaxUploadBytes, 32<<20, "maximum upload size in bytes")
	flags.Duration(config.KeyShutdownTimeout, 30*time.Second, "graceful shutdown timeout")
	flags.String(config.KeyLogLevel, "info", "log level: debug|info|warn|error")
	flags.String(config.KeyLogFormat, "text", "log format: text|json")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: applog.ComponentApp,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)

	// Amounts go out as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	// 1. Initialize Handler with NIL data
	// The API is live at once but returns 503 (Loading) until the ETL finishes
	h := api.NewHandler(nil, api.Options{
		RowPageLimit:   cfg.RowPageLimit,
		MaxUploadBytes: cfg.MaxUploadBytes,
		StrictParse:    cfg.StrictParse,
		Logger:         logger,
	})
	e := api.NewEcho(h, logger)

	// 2. Load the default dataset in the background
	go func() {
		logger.Info("Loading default dataset", applog.FieldSource, cfg.DataFile)
		ds, err := engine.LoadFile(cfg.DataFile, engine.LoadOptions{Strict: cfg.StrictParse, Logger: logger})
		if err != nil {
			logger.Error("Default dataset failed to load, waiting for an upload",
				applog.FieldSource, cfg.DataFile, applog.FieldError, err)
			return
		}
		if !h.SetDataIfEmpty(ds) {
			logger.Warn("Default dataset discarded, an upload is already being served",
				applog.FieldSource, cfg.DataFile)
		}
	}()

	// 3. Graceful shutdown handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server ready", applog.FieldPort, cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped gracefully")
	return nil
}
