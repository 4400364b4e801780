package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ad714/bookmirror/internal/domain"
	"github.com/ad714/bookmirror/internal/poller"
	"github.com/ad714/bookmirror/internal/server"
	"github.com/ad714/bookmirror/internal/server/handler"
	"github.com/ad714/bookmirror/internal/server/ws"
)

// ServeMode starts the HTTP API, the WebSocket hub, and the book polling
// controller. The catalog is read from the store; no background sync runs.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startAPI(ctx, g, deps)
	return g.Wait()
}

// SyncMode runs the catalog sync pipeline on its configured interval
// without serving HTTP traffic.
func (a *App) SyncMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting sync mode")

	if err := deps.Sync.RunLoop(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("sync mode: %w", err)
	}
	return nil
}

// FullMode starts everything: the catalog sync loop, the polling
// controller, the WebSocket hub, and the HTTP API.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := deps.Sync.RunLoop(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("catalog sync loop: %w", err)
	})

	a.startAPI(ctx, g, deps)
	return g.Wait()
}

// startAPI builds the polling controller, WebSocket hub, and HTTP server,
// and adds their goroutines to the given errgroup.
func (a *App) startAPI(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	hub := ws.NewHub(a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	pollOpts := []poller.Option{
		poller.WithInterval(a.cfg.PollInterval()),
		poller.WithUpdateHook(func(snap domain.BookSnapshot) {
			hub.Broadcast("book_snapshot", handler.NewSnapshotView(snap))
		}),
	}
	if deps.BookCache != nil {
		pollOpts = append(pollOpts, poller.WithBookCache(deps.BookCache))
	}
	ctrl := poller.New(deps.Fliq, a.logger, pollOpts...)

	handlers := server.Handlers{
		Health:   handler.NewHealthHandler(a.logger),
		Markets:  handler.NewMarketHandler(deps.Markets, a.logger),
		Books:    handler.NewBookHandler(ctrl, deps.Markets, deps.BookCache, a.logger),
		Simulate: handler.NewSimulateHandler(ctrl, a.logger),
		Poller:   handler.NewPollerHandler(ctrl, deps.Markets, a.logger),
	}
	if deps.Matcher != nil {
		handlers.Matches = handler.NewMatchHandler(deps.Matcher, a.logger)
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, handlers, hub, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		ctrl.Stop()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
