package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	amqp "github.com/rabbitmq/amqp091-go"

	"notification-hub/relay/pkg/domain"
)

func checkMailDocument(val []byte) error {
	var doc domain.QueuedMail
	if err := json.Unmarshal(val, &doc); err != nil {
		return err
	}
	if doc.ID == "" || doc.CreatedAt.IsZero() {
		return fmt.Errorf("document missing id or timestamp: %s", val)
	}
	if len(doc.Recipients) != 1 || doc.Recipients[0] != "admin@shop.test" {
		return fmt.Errorf("unexpected recipients: %v", doc.Recipients)
	}
	if doc.Metadata["source"] != "storefront-order" {
		return fmt.Errorf("unexpected metadata: %v", doc.Metadata)
	}
	return nil
}

func TestKafkaDeliver(t *testing.T) {
	prod := mocks.NewSyncProducer(t, nil)
	defer prod.Close()
	prod.ExpectSendMessageWithCheckerFunctionAndSucceed(checkMailDocument)

	k := &Kafka{Producer: prod, Topic: "mail"}
	if err := k.Deliver(context.Background(), testEnvelope()); err != nil {
		t.Fatalf("kafka deliver failed: %v", err)
	}
}

func TestKafkaDeliverFailure(t *testing.T) {
	prod := mocks.NewSyncProducer(t, nil)
	defer prod.Close()
	prod.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	k := &Kafka{Producer: prod, Topic: "mail"}
	err := k.Deliver(context.Background(), testEnvelope())
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
	if err := (&Kafka{Topic: "mail"}).Deliver(context.Background(), testEnvelope()); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete without producer, got %v", err)
	}
}

func TestNewKafkaProducerNeedsBrokers(t *testing.T) {
	if _, err := NewKafkaProducer(nil); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestAMQPDeliver(t *testing.T) {
	ch := &fakeChannel{}
	a := &AMQP{Channel: ch, Exchange: "mail", RoutingKey: "mail.queued"}
	if err := a.Deliver(context.Background(), testEnvelope()); err != nil {
		t.Fatalf("amqp deliver failed: %v", err)
	}
	if ch.exchange != "mail" || ch.key != "mail.queued" {
		t.Fatalf("unexpected route: %s %s", ch.exchange, ch.key)
	}
	if ch.msg.DeliveryMode != amqp.Persistent || ch.msg.ContentType != "application/json" {
		t.Fatalf("unexpected publishing: %+v", ch.msg)
	}
	if ch.msg.Type != amqpMessageType || ch.msg.MessageId == "" {
		t.Fatalf("missing message metadata: %+v", ch.msg)
	}
	if err := checkMailDocument(ch.msg.Body); err != nil {
		t.Fatal(err)
	}
}

func TestAMQPDeliverFailure(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	a := &AMQP{Channel: ch, Exchange: "mail"}
	if err := a.Deliver(context.Background(), testEnvelope()); !errors.Is(err, amqp.ErrClosed) {
		t.Fatalf("expected channel error, got %v", err)
	}
	if _, _, err := DialAMQP("", "mail"); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete without url, got %v", err)
	}
}
