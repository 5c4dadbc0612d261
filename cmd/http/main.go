package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fsanano/catalog/internal/cache"
	"fsanano/catalog/internal/config"
	"fsanano/catalog/internal/handler"
	"fsanano/catalog/internal/logger"
	"fsanano/catalog/internal/repository"
	"fsanano/catalog/internal/seed"
	"fsanano/catalog/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// store is everything the services and the seeder need from a backend.
type store interface {
	service.CatalogStore
	service.AccountStore
	seed.Store
}

func main() {
	Execute()
}

// openStore connects to the configured backend and makes sure the tables exist.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (store, func(), error) {
	if cfg.StoreBackend == config.BackendMemory {
		log.Warn("using in-memory store; data is lost on exit")
		return repository.NewMemoryRepository(), func() {}, nil
	}

	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("connected to database")

	repo := repository.NewShopRepository(dbPool)
	if err := repo.EnsureSchema(ctx); err != nil {
		dbPool.Close()
		return nil, nil, err
	}
	return repo, dbPool.Close, nil
}

func openItemCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (cache.ItemCache, func()) {
	if cfg.Redis.Addr == "" {
		return cache.NopItemCache{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis ping failed; item reads fall back to the store", "addr", cfg.Redis.Addr, "error", err)
	} else {
		log.Info("item cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.ItemTTL)
	}
	return cache.NewRedisItemCache(client, cfg.Redis.ItemTTL), func() { _ = client.Close() }
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	itemCache, closeCache := openItemCache(ctx, cfg, log)
	defer closeCache()

	catalogService := service.NewCatalogService(st, itemCache, log)
	accountService := service.NewAccountService(st)
	h := handler.NewHandler(catalogService, accountService, log)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: h,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		// Create a deadline to wait for.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server exiting")
	return nil
}
