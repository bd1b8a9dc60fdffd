package infrastructure

import (
	"context"

	"guildkeeper/domain/events"
	"guildkeeper/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// NATSTransactionalPublisher buffers the events raised inside one unit of
// work. They reach the underlying publisher only after the transaction has
// committed, so a rolled back ledger change never announces itself.
type NATSTransactionalPublisher struct {
	inner   interfaces.EventPublisher
	pending []events.Event
}

func NewNATSTransactionalPublisher(inner interfaces.EventPublisher) *NATSTransactionalPublisher {
	return &NATSTransactionalPublisher{inner: inner}
}

// Publish queues the event until Flush
func (p *NATSTransactionalPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

// Flush hands queued events to the underlying publisher in raise order.
// Delivery is best effort: failures are logged and the rest still go out.
// Events left when ctx is cancelled are dropped.
func (p *NATSTransactionalPublisher) Flush(ctx context.Context) error {
	defer p.reset()

	for i, event := range p.pending {
		if ctx.Err() != nil {
			log.WithFields(log.Fields{
				"dropped": len(p.pending) - i,
				"error":   ctx.Err(),
			}).Warn("Context cancelled while flushing domain events")
			return nil
		}
		if err := p.inner.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"event_type": event.Type(),
				"error":      err,
			}).Error("Failed to publish domain event after commit")
		}
	}
	return nil
}

// Discard drops queued events after a rollback
func (p *NATSTransactionalPublisher) Discard() {
	if n := len(p.pending); n > 0 {
		log.WithField("discarded", n).Debug("Discarding domain events from rolled back unit of work")
	}
	p.reset()
}

func (p *NATSTransactionalPublisher) reset() {
	p.pending = p.pending[:0]
}
