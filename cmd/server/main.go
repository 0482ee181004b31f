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
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/config"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/kiosk"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/router"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/service"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/storage"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/store"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/ws"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	kv, closeStore, err := store.Open(ctx, cfg.StoreDriver, cfg.DataDir, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()
	logger.Info("store opened", zap.String("driver", cfg.StoreDriver))

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	catalogs := catalog.NewService(kv, logger)
	orders := service.NewOrderService(kv, hub, logger, loc)
	session := kiosk.NewSession(kv, catalogs, orders, logger)
	if err := session.Load(ctx); err != nil {
		return fmt.Errorf("restore kiosk session: %w", err)
	}

	deps := router.Deps{
		Catalog: catalogs,
		Orders:  orders,
		Session: session,
		Hub:     hub,
		Logger:  logger,
	}
	if cfg.R2.Enabled() {
		r2, err := storage.NewR2Client(ctx, cfg.R2)
		if err != nil {
			return fmt.Errorf("init image storage: %w", err)
		}
		deps.Uploader = r2
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
