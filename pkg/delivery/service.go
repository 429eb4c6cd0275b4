// Package delivery holds the best-effort secondary channels that copy a
// storefront notification to the shop's mailbox after LINE accepted it.
package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"notification-hub/relay/pkg/domain"
)

// ErrIncomplete is returned when a channel is selected but the settings or
// connections it needs are missing.
var ErrIncomplete = errors.New("secondary delivery not fully configured")

// Service is the interface all secondary channels implement.
type Service interface {
	Deliver(ctx context.Context, env domain.Envelope) error
	Name() string
}

// Noop is used when secondary delivery is disabled.
type Noop struct{}

func (Noop) Name() string { return "none" }

func (Noop) Deliver(ctx context.Context, env domain.Envelope) error {
	return nil
}

// NewQueuedMail turns an envelope into the document consumed by the external
// mail worker. CreatedAt is left zero for stores that assign it themselves.
func NewQueuedMail(env domain.Envelope) domain.QueuedMail {
	meta := map[string]any{"source": env.Source}
	if env.Contact != "" {
		meta["contact"] = env.Contact
	}
	return domain.QueuedMail{
		ID:         uuid.NewString(),
		Recipients: env.Recipients,
		From:       env.From,
		ReplyTo:    env.ReplyTo,
		Message:    env.Message,
		Metadata:   meta,
	}
}

// stamped returns the document with CreatedAt set, for brokers where no
// server assigns it.
func stamped(doc domain.QueuedMail) domain.QueuedMail {
	doc.CreatedAt = time.Now().UTC()
	return doc
}
