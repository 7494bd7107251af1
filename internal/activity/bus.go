package activity

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsDropped = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "ration",
		Subsystem: "activity",
		Name:      "events_dropped_total",
		Help:      "Activity events discarded because the delivery buffer was full.",
	},
	[]string{"kind"},
)

// Bus is an in-process queue backed by a buffered channel.
type Bus struct {
	ch      chan Event
	dropped atomic.Int64
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	if buffer < 1 {
		buffer = 1
	}
	return &Bus{ch: make(chan Event, buffer)}
}

// Publish enqueues without blocking and reports whether the event was kept.
func (b *Bus) Publish(e Event) bool {
	select {
	case b.ch <- e:
		return true
	default:
		b.dropped.Add(1)
		eventsDropped.WithLabelValues(string(e.Kind)).Inc()
		return false
	}
}

// Subscribe returns the consumer side of the queue.
func (b *Bus) Subscribe() <-chan Event { return b.ch }

// Dropped returns how many events Publish has discarded.
func (b *Bus) Dropped() int64 { return b.dropped.Load() }
