package events

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Broker fans events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full loses the event and the drop counter
// advances.
type Broker struct {
	logger *slog.Logger

	mu      sync.RWMutex
	subs    map[chan Event]struct{}
	dropped atomic.Int64
}

// NewBroker creates an empty broker logging drops through l
// (slog.Default when nil).
func NewBroker(l *slog.Logger) *Broker {
	if l == nil {
		l = slog.Default()
	}
	return &Broker{logger: l, subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber with the given buffer size
// (100 when buf is not positive). The caller must Unsubscribe when done.
func (b *Broker) Subscribe(buf int) chan Event {
	if buf <= 0 {
		buf = 100
	}
	ch := make(chan Event, buf)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes ch.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish delivers ev to every subscriber that has buffer space.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			count := b.dropped.Add(1)
			if count == 1 || count%100 == 0 {
				b.logger.Warn("event dropped for slow subscriber",
					slog.String("type", string(ev.Type)),
					slog.Int64("total_dropped", count))
			}
		}
	}
}

// DroppedCount returns how many events were lost to slow subscribers.
func (b *Broker) DroppedCount() int64 {
	return b.dropped.Load()
}
