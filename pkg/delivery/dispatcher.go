package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"notification-hub/relay/pkg/domain"
	"notification-hub/relay/pkg/logger"
	"notification-hub/relay/pkg/metrics"
)

// Dispatcher runs the secondary channel after the LINE push succeeded. The
// result is only logged and counted: it never reaches the storefront, and
// nothing orders the HTTP response against the delivery finishing.
type Dispatcher struct {
	svc     Service
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher wraps svc. A nil svc disables secondary delivery.
func NewDispatcher(svc Service, timeout time.Duration) *Dispatcher {
	if svc == nil {
		svc = Noop{}
	}
	return &Dispatcher{svc: svc, timeout: timeout}
}

// Channel names the configured secondary channel.
func (d *Dispatcher) Channel() string { return d.svc.Name() }

// Enabled reports whether a real channel is configured.
func (d *Dispatcher) Enabled() bool {
	_, noop := d.svc.(Noop)
	return !noop
}

// Dispatch starts one delivery attempt and returns immediately. The request
// context is detached so the delivery outlives the HTTP response.
func (d *Dispatcher) Dispatch(ctx context.Context, env domain.Envelope) {
	name := d.svc.Name()
	if !d.Enabled() {
		metrics.IncSecondary(name, string(domain.DeliverySkipped))
		return
	}
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		err := d.deliver(ctx, env)
		status := statusOf(err)
		metrics.IncSecondary(name, string(status))
		if err != nil {
			logger.Get().Warn().Err(err).Str("channel", name).Str("status", string(status)).Str("source", env.Source).Msg("secondary delivery failed")
			return
		}
		logger.Get().Info().Str("channel", name).Str("status", string(status)).Str("source", env.Source).Msg("secondary delivery done")
	}()
}

// statusOf maps a delivery error to its status. A channel that lacks its
// settings counts as skipped, not failed.
func statusOf(err error) domain.DeliveryStatus {
	switch {
	case err == nil:
		return domain.DeliverySent
	case errors.Is(err, ErrIncomplete):
		return domain.DeliverySkipped
	}
	return domain.DeliveryFailed
}

func (d *Dispatcher) deliver(ctx context.Context, env domain.Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("secondary delivery panicked: %v", r)
		}
	}()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return d.svc.Deliver(ctx, env)
}

// Wait waits for pending deliveries to complete or until the provided
// context is cancelled.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
