package app

import (
	"go.uber.org/zap"

	"reviewpulse/internal/config"
	"reviewpulse/internal/events"
	"reviewpulse/internal/queue"
)

func openMirror(cfg config.KafkaConfig, log *zap.Logger) (events.Mirror, func() error, error) {
	if len(cfg.Brokers) == 0 {
		return nil, func() error { return nil }, nil
	}

	k, err := queue.NewKafka(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}
	log.Info("mirroring events to kafka", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return k, k.Close, nil
}
