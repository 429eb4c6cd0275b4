package delivery

import (
	"fmt"

	"github.com/IBM/sarama"
	"gorm.io/gorm"

	"notification-hub/relay/pkg/config"
)

// Deps carries the connections opened by the server for the chosen mode.
type Deps struct {
	DB    *gorm.DB
	Kafka sarama.SyncProducer
	AMQP  amqpPublisher
}

// ResolveMode turns the configured mail mode into a concrete one. Without an
// admin address there is nobody to mail, so secondary delivery is off. In
// auto mode the first configured transport wins: SMTP, then the postgres
// queue, then Kafka, then AMQP.
func ResolveMode(cfg *config.Config) string {
	if cfg.AdminEmail == "" {
		return config.MailModeNone
	}
	if cfg.MailMode != config.MailModeAuto {
		return cfg.MailMode
	}
	switch {
	case cfg.SMTPHost != "":
		return config.MailModeSMTP
	case cfg.DBDSN != "":
		return config.MailModeQueue
	case len(cfg.KafkaBrokers) > 0:
		return config.MailModeKafka
	case cfg.AMQPURL != "":
		return config.MailModeAMQP
	}
	return config.MailModeNone
}

// FromConfig builds the secondary channel for mode. It returns ErrIncomplete
// when the mode's settings or connections are missing; callers fall back to
// Noop so the relay keeps serving LINE-only.
func FromConfig(cfg *config.Config, mode string, deps Deps) (Service, error) {
	switch mode {
	case config.MailModeNone:
		return Noop{}, nil
	case config.MailModeSMTP:
		if cfg.SMTPHost == "" || cfg.Sender() == "" {
			return Noop{}, fmt.Errorf("smtp: %w", ErrIncomplete)
		}
		return &SMTP{
			Host:   cfg.SMTPHost,
			Port:   cfg.SMTPPort,
			Secure: cfg.SMTPSecure,
			User:   cfg.SMTPUser,
			Pass:   cfg.SMTPPass,
		}, nil
	case config.MailModeQueue:
		if deps.DB == nil {
			return Noop{}, fmt.Errorf("queue: %w", ErrIncomplete)
		}
		return &Queue{DB: deps.DB}, nil
	case config.MailModeKafka:
		if deps.Kafka == nil || cfg.KafkaTopic == "" {
			return Noop{}, fmt.Errorf("kafka: %w", ErrIncomplete)
		}
		return &Kafka{Producer: deps.Kafka, Topic: cfg.KafkaTopic}, nil
	case config.MailModeAMQP:
		if deps.AMQP == nil || cfg.AMQPExchange == "" {
			return Noop{}, fmt.Errorf("amqp: %w", ErrIncomplete)
		}
		return &AMQP{Channel: deps.AMQP, Exchange: cfg.AMQPExchange, RoutingKey: cfg.AMQPRoutingKey}, nil
	}
	return Noop{}, fmt.Errorf("unknown mail mode %q: %w", mode, ErrIncomplete)
}
