package queue

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"

	"reviewpulse/internal/domain"
)

// Kafka mirrors logged events onto a topic, keyed by client id.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafka(brokers []string, topic string) (*Kafka, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return NewKafkaWithProducer(producer, topic), nil
}

func NewKafkaWithProducer(p sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{
		producer: p,
		topic:    topic,
	}
}

func (k *Kafka) Publish(ctx context.Context, ev domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(ev.ClientID),
		Value: sarama.ByteEncoder(data),
	})

	return err
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}
