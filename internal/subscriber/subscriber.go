// Package subscriber implements the Subscriber Store: at most one active
// handler per channel id, with re-subscription replacing rather than
// fanning out.
package subscriber

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"cyre.run/cyre/internal/types"
)

// Store maps channel id to its single active Handler.
type Store struct {
	mu       sync.RWMutex
	handlers map[string]types.Handler
}

// NewStore creates an empty subscriber store.
func NewStore() *Store {
	return &Store{handlers: make(map[string]types.Handler)}
}

// Subscribe installs handler for id, replacing any prior handler. A
// re-subscribe is logged at warn level so silent handler swaps are visible.
func (s *Store) Subscribe(id string, handler types.Handler) {
	s.mu.Lock()
	_, existed := s.handlers[id]
	s.handlers[id] = handler
	s.mu.Unlock()

	if existed {
		slog.Warn("subscriber replaced", "channel_id", id)
	}
}

// Get returns the handler for id, if any.
func (s *Store) Get(id string) (types.Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[id]
	return h, ok
}

// Forget removes the handler for id.
func (s *Store) Forget(id string) {
	s.mu.Lock()
	delete(s.handlers, id)
	s.mu.Unlock()
}

// Clear removes every handler.
func (s *Store) Clear() {
	s.mu.Lock()
	s.handlers = make(map[string]types.Handler)
	s.mu.Unlock()
}

// Subscription pairs an id with a handler, for batch On() calls.
type Subscription struct {
	ID      string
	Handler types.Handler
}

// BatchSubscribe installs every subscription concurrently via a conc pool:
// one malformed item can't take the batch down with it.
func (s *Store) BatchSubscribe(subs []Subscription) []types.BatchItemResult {
	results := make([]types.BatchItemResult, len(subs))
	p := pool.New().WithMaxGoroutines(maxBatchGoroutines(len(subs)))
	for i := range subs {
		i := i
		p.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					results[i] = types.BatchItemResult{ID: subs[i].ID, OK: false, Error: fmt.Sprintf("panic subscribing %q: %v", subs[i].ID, r)}
				}
			}()
			s.Subscribe(subs[i].ID, subs[i].Handler)
			results[i] = types.BatchItemResult{ID: subs[i].ID, OK: true}
		})
	}
	p.Wait()
	return results
}

func maxBatchGoroutines(n int) int {
	const limit = 64
	if n < 1 {
		return 1
	}
	if n > limit {
		return limit
	}
	return n
}
