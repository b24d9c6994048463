package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultSubscriberBuffer = 64

// EventBus fans stage events out to registered sinks and live subscribers.
type EventBus struct {
	mu               sync.RWMutex
	sinks            []Sink
	subscribers      map[uint64]chan StageEvent
	nextID           uint64
	subscriberBuffer int
}

func NewEventBus(subscriberBuffer int, sinks ...Sink) *EventBus {
	if subscriberBuffer <= 0 {
		subscriberBuffer = defaultSubscriberBuffer
	}
	return &EventBus{
		sinks:            sinks,
		subscribers:      make(map[uint64]chan StageEvent),
		subscriberBuffer: subscriberBuffer,
	}
}

func (eb *EventBus) AddSink(sink Sink) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.sinks = append(eb.sinks, sink)
}

func (eb *EventBus) Publish(ctx context.Context, event StageEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, sink := range eb.sinks {
		sink.Publish(ctx, event)
	}
	for id, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			log.Warn().Uint64("subscriber", id).Str("stage", string(event.Stage)).
				Msg("[EventBus] [Publish] subscriber buffer full, dropping event")
		}
	}
}

// Subscribe returns a channel of future events and a function that closes it.
func (eb *EventBus) Subscribe() (<-chan StageEvent, func()) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	id := eb.nextID
	eb.nextID++
	ch := make(chan StageEvent, eb.subscriberBuffer)
	eb.subscribers[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			eb.mu.Lock()
			defer eb.mu.Unlock()
			delete(eb.subscribers, id)
			close(ch)
		})
	}
}
