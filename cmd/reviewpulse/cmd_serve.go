package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"reviewpulse/internal/api"
	"reviewpulse/internal/worker"
)

var (
	serveAddr      string
	serveHeartbeat bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves the JSON API and the status event stream. The dataset is loaded
once at startup; a failed load is logged and can be retried through
POST /api/reviews/load.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Port
	}

	a, closeFn, err := buildApp()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	server := api.NewServer(a, logger.Named("api"))

	if n, err := a.LoadReviews(ctx); err != nil {
		logger.Warn("initial review load failed", zap.Error(err))
	} else {
		logger.Info("reviews loaded", zap.Int("count", n))
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", addr))
		return server.Start(addr)
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if serveHeartbeat && cfg.Events.Heartbeat > 0 {
		g.Go(func() error {
			worker.NewHeartbeat(a, cfg.Events.Heartbeat, logger.Named("heartbeat")).Start(ctx)
			return nil
		})
	}

	return g.Wait()
}
