package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harborlog/server/internal/app"
	"github.com/harborlog/server/internal/config"
	"github.com/harborlog/server/internal/grpcapi"
	"github.com/harborlog/server/internal/harborlog/service"
	"github.com/harborlog/server/internal/harborlog/vocab"
	"github.com/harborlog/server/internal/httpapi"
)

func main() {
	cfg := config.FromEnv()
	logger := app.NewLogger(os.Stderr, "harborlog-server", cfg.LogLevel)
	for _, w := range cfg.Warnings {
		logger.Warn("config", "problem", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// gRPC health comes up first so probes see NOT_SERVING while the store opens.
	var health *grpcapi.Server
	healthDone := make(chan error, 1)
	if cfg.GRPCAddr != "" {
		var err error
		health, err = grpcapi.NewServer(cfg.GRPCAddr, logger)
		if err != nil {
			logger.Fatal("grpc health", "err", err)
		}
		go func() { healthDone <- health.Serve(ctx) }()
	} else {
		healthDone <- nil
	}

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", "err", err)
	}
	defer stores.Close()

	words, err := vocab.Load(cfg.VocabPath)
	if err != nil {
		logger.Fatal("load vocabulary", "err", err)
	}

	if cfg.Env == "dev" && cfg.Store == config.StoreMemory {
		n, err := service.Seed(ctx, stores.Records, service.Samples(time.Now(), cfg.Location, cfg.RangeDays, words))
		if err != nil {
			logger.Warn("seed samples", "err", err)
		}
		logger.Info("seeded sample records", "count", n)
	}

	// Services
	reports := service.NewReportService(stores.Records, service.ReportOptions{
		Location:   cfg.Location,
		RangeDays:  cfg.RangeDays,
		MaxBars:    cfg.MaxBars,
		Vocabulary: words,
	})
	entries := service.NewEntryService(stores.Records, service.NewStaffDirectory(stores.Staff), words)

	pruner := service.NewRecordPruner(stores.Records, service.PrunerConfig{
		RetentionDays: cfg.RetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:  logger,
		Addr:    cfg.HTTPAddr,
		Reports: reports,
		Entries: entries,
	})

	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "store", stores.Kind, "tz", cfg.Location.String())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	if health != nil {
		health.SetServing(true)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}
	if err := <-healthDone; err != nil {
		logger.Warn("grpc shutdown", "err", err)
	}
}
