// Package app собирает зависимости сервера и CLI из конфигурации.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/cloud-ru/mcp-realty-go/internal/config"
	"github.com/cloud-ru/mcp-realty-go/internal/logger"
	"github.com/cloud-ru/mcp-realty-go/internal/ratetable"
	"github.com/cloud-ru/mcp-realty-go/internal/repository"
	"github.com/cloud-ru/mcp-realty-go/internal/service"
	"github.com/cloud-ru/mcp-realty-go/internal/tools"
	"github.com/cloud-ru/mcp-realty-go/internal/tracing"
)

// App - граф зависимостей сервера и CLI
type App struct {
	Config   *config.Config
	Tables   *ratetable.Cache
	Plans    *service.PlanService
	Registry *tools.Registry

	closers []func() error
}

// New строит зависимости. Redis и SQLite подключаются, только если заданы REDIS_ADDR и DATABASE_PATH;
// недоступный Redis заменяется кешем в памяти.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	a.Tables = ratetable.NewCache(cfg.CacheTTL, cfg.DataDir)

	var cache repository.CacheRepository = repository.NewMemoryCache(cfg.CacheTTL)
	if cfg.RedisAddr != "" {
		redisCache := repository.NewRedisCache(cfg.RedisAddr, cfg.CacheTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := redisCache.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.L.Warn("Redis недоступен, используется кеш в памяти", "addr", cfg.RedisAddr, "error", err)
			redisCache.Close()
		} else {
			logger.L.Info("Кеш планов в Redis", "addr", cfg.RedisAddr)
			cache = redisCache
			a.closers = append(a.closers, redisCache.Close)
		}
	}

	var runs repository.RunRepository = repository.NewMemoryRunRepository()
	if cfg.DatabasePath != "" {
		store, err := repository.NewSQLiteRunRepository(cfg.DatabasePath)
		if err != nil {
			a.Close()
			return nil, err
		}
		runs = store
		a.closers = append(a.closers, store.Close)
	}

	a.Plans = service.NewPlanService(cfg, a.Tables, cache, runs)
	a.Registry = tools.NewRegistry(cfg, tracing.Tracer, a.Tables, a.Plans)
	return a, nil
}

// Close освобождает соединения с Redis и базой
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
