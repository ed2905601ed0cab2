package queue

import (
	"context"

	"reviewpulse/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
	Close() error
}
