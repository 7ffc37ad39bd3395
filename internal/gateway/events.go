package gateway

import (
	"context"
	"sync"
	"time"
)

// SessionInvalidated is published after a 401, once the credential has been
// cleared. The application shell turns it into a navigation.
type SessionInvalidated struct {
	Method    string
	Path      string
	Status    int
	RequestID string
	At        time.Time
}

// Subscriber receives invalidation signals synchronously, on the goroutine of the
// failing call and before that call returns.
type Subscriber func(ctx context.Context, ev SessionInvalidated)

type subscribers struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Subscriber
}

func (s *subscribers) add(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]Subscriber)
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *subscribers) publish(ctx context.Context, ev SessionInvalidated) {
	s.mu.RLock()
	snapshot := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		snapshot = append(snapshot, fn)
	}
	s.mu.RUnlock()

	for _, fn := range snapshot {
		fn(ctx, ev)
	}
}
