package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bigchunguss42069/sketch-time-tool/internal/config"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service"
	generate_excel "github.com/bigchunguss42069/sketch-time-tool/internal/service/generate-excel"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage/filestore"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage/mysql"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustConfig()

	log := setupLogger(cfg.Env, cfg.ErrorLog)

	store, err := filestore.New(cfg.DataDir)
	if err != nil {
		log.Error("failed to open data dir", slog.String("error", err.Error()))
		os.Exit(1)
	}

	opts := service.Options{
		Holidays:         cfg.Holidays,
		DailyTargetHours: cfg.DailyTargetHours,
	}

	if cfg.Replica.DSN != "" {
		replica, err := mysql.New(cfg.Replica.DSN)
		if err != nil {
			log.Error("failed to open replica", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer replica.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = replica.Migrate(ctx)
		cancel()
		if err != nil {
			log.Warn("replica unavailable, continuing without it", slog.String("error", err.Error()))
		} else {
			opts.Replica = replica
		}
	}

	ledger := service.NewLedgerService(log, store.Snapshots, store.Locks, store.Aggregation, store.Archive, opts)
	genService := generate_excel.NewGenerateService(ledger)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, ledger, genService),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}
