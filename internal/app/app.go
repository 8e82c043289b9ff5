// Package app wires configuration, storage, engine, sweeps, and the HTTP
// server together and runs them under one errgroup.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fundcore/internal/config"
	"fundcore/internal/engine"
	"fundcore/internal/logger"
	"fundcore/internal/notify"
	"fundcore/internal/store"
	"fundcore/internal/store/sqlite"
	httpapi "fundcore/internal/transport/http"
)

type App struct {
	cfg     *config.Config
	store   store.Store
	engine  *engine.Service
	http    *httpapi.Server
	sweeper *notify.Sweeper
}

// NewApp builds the application object from config (does not start it).
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	st, err := sqlite.NewSqliteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if cfg.Settlement.SeedDemoData {
		if err := store.SeedDemoData(context.Background(), st); err != nil {
			return nil, fmt.Errorf("seeding demo data: %w", err)
		}
	}

	eng := engine.NewService(st)
	eng.SetDefaultBatchSize(cfg.Settlement.BatchSize)

	srv, err := httpapi.NewServer(cfg.App.HTTPAddr, st, eng)
	if err != nil {
		return nil, fmt.Errorf("building http server: %w", err)
	}

	sweeper := notify.NewSweeper(st, notify.LogSender{}, cfg.Outbox.BatchSize,
		time.Duration(cfg.Outbox.IntervalSeconds)*time.Second)

	return &App{cfg: cfg, store: st, engine: eng, http: srv, sweeper: sweeper}, nil
}

// Run starts the HTTP server, the periodic settlement sweep, and the outbox
// drain, and blocks until ctx is canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.store.Close()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		return a.runSettlementSweep(ctx)
	})

	group.Go(func() error {
		err := a.sweeper.Run(ctx)
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return err
	})

	return group.Wait()
}

func (a *App) runSettlementSweep(ctx context.Context) error {
	interval := time.Duration(a.cfg.Settlement.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ids, err := a.engine.SettleDueOrders(ctx, a.cfg.Settlement.BatchSize)
			if err != nil {
				logger.Errorf("settlement sweep failed: %v", err)
				continue
			}
			if len(ids) > 0 {
				logger.Infof("settlement sweep processed orders: %v", ids)
			}
		}
	}
}
