package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type HeartbeatSender interface {
	LogHeartbeat(ctx context.Context, meta map[string]any) (string, error)
}

// Heartbeat sends a heartbeat event immediately and then on every tick
// until the context ends.
type Heartbeat struct {
	sender   HeartbeatSender
	interval time.Duration
	log      *zap.Logger
	sent     int
	failed   int
}

func NewHeartbeat(s HeartbeatSender, interval time.Duration, log *zap.Logger) *Heartbeat {
	return &Heartbeat{
		sender:   s,
		interval: interval,
		log:      log,
	}
}

func (w *Heartbeat) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.beat(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("heartbeat stopped", zap.Int("sent", w.sent), zap.Int("failed", w.failed))
			return
		case <-ticker.C:
			w.beat(ctx)
		}
	}
}

func (w *Heartbeat) beat(ctx context.Context) {
	status, err := w.sender.LogHeartbeat(ctx, map[string]any{"source": "heartbeat"})
	if err != nil {
		w.failed++
		w.log.Warn("heartbeat failed", zap.String("status", status), zap.Error(err))
		return
	}
	w.sent++
	w.log.Debug("heartbeat", zap.String("status", status), zap.Int("sent", w.sent))
}

func (w *Heartbeat) Stats() (sent, failed int) {
	return w.sent, w.failed
}
