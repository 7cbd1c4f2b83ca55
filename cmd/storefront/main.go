// Command storefront serves the storefront state engine over HTTP.
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

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/storefront/internal/adapter/catalogapi"
	"github.com/example/storefront/internal/adapter/httpapi"
	"github.com/example/storefront/internal/adapter/natsstan"
	"github.com/example/storefront/internal/adapter/persist"
	"github.com/example/storefront/internal/adapter/storage"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/obs"
	"github.com/example/storefront/internal/usecase"
)

func main() {
	cfg := config.Load()
	obs.InitLogger(cfg.LogLevel)
	if err := run(cfg); err != nil {
		obs.Logger().Error("storefront_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	cart := usecase.LoadCart{
		Persister: persist.NewCartSnapshot(st, cfg.CartStorageKey, cfg.PersistTimeout),
	}.Execute(ctx)
	obs.Logger().Info("cart_restored", "entries", cart.Len(), "backend", cfg.StorageBackend)

	cat := catalog.New(catalogapi.New(cfg.CatalogBaseURL, cfg.CatalogTimeout))
	cat.FetchListAsync(ctx)

	if cfg.STANSubject != "" {
		sub := &natsstan.Subscriber{
			ClusterID: cfg.STANClusterID,
			ClientID:  cfg.STANClientID,
			URL:       cfg.NATSURL,
			Subject:   cfg.STANSubject,
			Durable:   cfg.STANDurable,
		}
		// the storefront keeps serving without refresh notifications
		if err := sub.Subscribe(ctx, usecase.RefreshCatalog{Catalog: cat}.Execute); err != nil {
			obs.Logger().Warn("catalog_subscriber_disabled", "error", err)
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewServer(ctx, cart, cat).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		obs.Logger().Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		obs.Logger().Info("shutdown_signal")
	case err := <-errc:
		return fmt.Errorf("http: %w", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		obs.Logger().Error("http_shutdown_error", "error", err)
	}
	obs.Logger().Info("storefront_stopped")
	return nil
}

// openStorage builds the configured key/value backend and its close func.
func openStorage(ctx context.Context, cfg config.Config) (domain.Storage, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemory(), func() {}, nil
	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required for the postgres backend")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		if err := storage.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("init schema: %w", err)
		}
		return storage.NewPostgres(pool), pool.Close, nil
	default:
		return storage.NewFile(cfg.StorageDir), func() {}, nil
	}
}
