package infrastructure

import (
	"sync/atomic"

	"guildkeeper/domain/events"

	log "github.com/sirupsen/logrus"
)

// NoopEventPublisher discards domain events. Integration tests use it so
// units of work can commit without a broker.
type NoopEventPublisher struct {
	dropped atomic.Int64
}

func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

func (n *NoopEventPublisher) Publish(event events.Event) error {
	n.dropped.Add(1)
	log.WithField("event_type", event.Type()).Trace("Dropping domain event")
	return nil
}

// Dropped reports how many events were discarded
func (n *NoopEventPublisher) Dropped() int64 {
	return n.dropped.Load()
}
