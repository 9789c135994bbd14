package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"snapexpense/internal/analyzer"
	"snapexpense/internal/app"
	"snapexpense/internal/backend"
	"snapexpense/internal/cli"
	apphttp "snapexpense/internal/http"
	applog "snapexpense/internal/log"
	"snapexpense/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(ctx, backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
		DataFilePath: cfg.DataFilePath,
	})
	if err != nil {
		logger.Error("Failed to initialize persistence backend",
			applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	st := store.New(result.Blob, logger)
	records := st.Load(ctx)
	logger.Info("Record collection loaded",
		applog.FieldRecordCount, len(records),
		applog.FieldBackend, cfg.DataBackend)

	var analysis app.Analyzer
	if cfg.AnalysisEnabled() {
		analysis = analyzer.NewClient(analyzer.Config{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Timeout: cfg.AnalyzeTimeout,
		}, logger)
		logger.Info("Receipt analysis enabled", applog.FieldModel, cfg.GeminiModel)
	} else {
		logger.Info("Receipt analysis disabled, manual entry only")
	}

	controller := app.NewController(st, analysis, cfg.AnalyzeTimeout, logger)

	srv, err := apphttp.NewServer(":"+cfg.Port, controller, logger)
	if err != nil {
		logger.Error("Failed to initialize HTTP server", applog.FieldError, err)
		os.Exit(1)
	}
	srv.ReadTimeout = 15 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
