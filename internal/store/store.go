// Package store persists the handful of client-side values the tools keep
// between runs: the visitor id and the webhook URL.
package store

import (
	"context"
	"errors"
	"fmt"

	"reviewpulse/internal/config"
)

const (
	KeyClientID   = "uid"
	KeyWebhookURL = "gas_url"
)

var ErrNotFound = errors.New("key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(cfg.RedisAddr, cfg.Prefix)
	case "file", "":
		return NewFile(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
