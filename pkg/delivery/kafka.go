package delivery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"notification-hub/relay/pkg/domain"
)

// NewKafkaProducer returns an idempotent producer that waits for all
// in-sync replicas.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	if len(brokers) == 0 {
		return nil, ErrIncomplete
	}
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	return sarama.NewSyncProducer(brokers, cfg)
}

// Kafka publishes the mail document to a topic instead of a table.
type Kafka struct {
	Producer sarama.SyncProducer
	Topic    string
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Deliver(ctx context.Context, env domain.Envelope) error {
	if k.Producer == nil || k.Topic == "" || len(env.Recipients) == 0 {
		return ErrIncomplete
	}
	doc := stamped(NewQueuedMail(env))
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal mail document: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: k.Topic,
		Key:   sarama.StringEncoder(doc.ID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("source"), Value: []byte(env.Source)},
		},
	}
	done := make(chan error, 1)
	go func() {
		_, _, err := k.Producer.SendMessage(msg)
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("publish to %s: %w", k.Topic, err)
		}
		return nil
	}
}
