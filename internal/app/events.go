package app

import (
	"context"
	"time"

	"reviewpulse/internal/domain"
	"reviewpulse/internal/events"
)

func (a *App) SaveWebhookURL(ctx context.Context, raw string) (string, error) {
	status, err := events.SaveWebhookURL(ctx, a.deps.Store, raw)
	a.setStatus(ToolEvents, status, err)
	return status, err
}

func (a *App) WebhookURL(ctx context.Context) (string, error) {
	return events.SavedWebhookURL(ctx, a.deps.Store)
}

func (a *App) ClientID(ctx context.Context) (string, error) {
	return events.ClientID(ctx, a.deps.Store, time.Now())
}

// LogEvent sends one event. Concurrent calls are rejected with ErrBusy.
func (a *App) LogEvent(ctx context.Context, name, variant string, meta map[string]any) (string, error) {
	release, err := acquire(&a.logging)
	if err != nil {
		return "", err
	}
	defer release()

	status, err := a.deps.Events.Log(ctx, name, variant, meta)
	a.setStatus(ToolEvents, status, err)
	return status, err
}

// LogHeartbeat sends a heartbeat event. It is guarded separately from
// LogEvent, so a heartbeat in flight never rejects a click.
func (a *App) LogHeartbeat(ctx context.Context, meta map[string]any) (string, error) {
	release, err := acquire(&a.heartbeating)
	if err != nil {
		return "", err
	}
	defer release()

	status, err := a.deps.Events.Log(ctx, domain.EventHeartbeat, "", meta)
	a.setStatus(ToolEvents, status, err)
	return status, err
}
