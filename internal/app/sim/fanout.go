package sim

import (
	"curefront/internal/app/ports"
	"curefront/internal/domain/outbreak"
)

// MultiPublisher fans one notification batch out to several sinks (live
// stream, audit log) in order.
type MultiPublisher []ports.EventPublisher

func (m MultiPublisher) Publish(events []outbreak.Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(events)
		}
	}
}
