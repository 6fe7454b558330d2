package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UnauthorizedEvent is published when a request is rejected with 401.
type UnauthorizedEvent struct {
	URL    string
	Status int
	At     time.Time
}

// UnauthorizedHandler receives unauthorized events.
type UnauthorizedHandler func(UnauthorizedEvent)

// Broadcaster fans unauthorized events out to subscribers. It is owned by the request layer;
// the session controller subscribes at startup.
type Broadcaster struct {
	mu       sync.RWMutex
	handlers map[uuid.UUID]UnauthorizedHandler
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{handlers: make(map[uuid.UUID]UnauthorizedHandler)}
}

// Subscribe registers h and returns a function that removes it.
func (b *Broadcaster) Subscribe(h UnauthorizedHandler) (unsubscribe func()) {
	id := uuid.New()
	b.mu.Lock()
	b.handlers[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish calls every subscriber synchronously. A panicking subscriber is logged and skipped.
func (b *Broadcaster) Publish(ev UnauthorizedEvent) {
	b.mu.RLock()
	handlers := make([]UnauthorizedHandler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("url", ev.URL).Msg("Unauthorized handler panicked")
				}
			}()
			h(ev)
		}()
	}
}

// Subscribers returns the number of registered handlers.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
