package channel

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/serialx/hashring"
	"github.com/sourcegraph/conc/pool"

	"cyre.run/cyre/internal/payload"
	"cyre.run/cyre/internal/pipeline"
	"cyre.run/cyre/internal/types"
)

type shard struct {
	mu       sync.RWMutex
	channels map[string]*Channel
}

// Store is the Channel Store. It shards its backing maps across a
// consistent hash ring keyed by channel id, so that registering, looking
// up, or forgetting one channel never contends with unrelated ids, and so
// shard membership stays stable when the shard count changes.
type Store struct {
	ring     *hashring.HashRing
	shards   map[string]*shard
	payloads *payload.Store
}

// NewStore creates a Store with numShards stripes, backed by payloads for
// change-detection baselines.
func NewStore(numShards int, payloads *payload.Store) *Store {
	if numShards < 1 {
		numShards = 1
	}
	names := make([]string, numShards)
	shards := make(map[string]*shard, numShards)
	for i := 0; i < numShards; i++ {
		name := strconv.Itoa(i)
		names[i] = name
		shards[name] = &shard{channels: make(map[string]*Channel)}
	}
	return &Store{
		ring:     hashring.New(names),
		shards:   shards,
		payloads: payloads,
	}
}

func (s *Store) shardFor(id string) *shard {
	name, ok := s.ring.GetNode(id)
	if !ok {
		// Only an empty ring reaches this; fall back to any shard.
		for _, sh := range s.shards {
			return sh
		}
	}
	return s.shards[name]
}

// prepare validates cfg and compiles its pipeline without touching the
// store, so it can run concurrently with other items in a batch
// (BatchRegister) before anything is applied.
func (s *Store) prepare(cfg types.Config) (*Channel, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	id := cfg.ID
	compiled := pipeline.Compile(cfg, func() (any, bool) {
		return s.payloads.Prev(id)
	})
	ch := &Channel{Config: cfg, Pipeline: compiled}
	ch.isBlocked = cfg.Block
	return ch, nil
}

// apply writes a prepared record into its shard. Re-registration with the
// same id replaces the config and compiled pipeline, clears runtime
// scratch, but preserves the payload slot —
// the payload slot lives in a separate store untouched by this write.
func (s *Store) apply(ch *Channel) {
	sh := s.shardFor(ch.Config.ID)
	sh.mu.Lock()
	sh.channels[ch.Config.ID] = ch
	sh.mu.Unlock()
}

// Register validates cfg, compiles its pipeline, and writes the record.
func (s *Store) Register(cfg types.Config) error {
	ch, err := s.prepare(cfg)
	if err != nil {
		return err
	}
	s.apply(ch)
	return nil
}

// Get returns the channel record for id, if registered.
func (s *Store) Get(id string) (*Channel, bool) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	ch, ok := sh.channels[id]
	return ch, ok
}

// Forget removes the channel record for id. Returns false if it wasn't
// registered.
func (s *Store) Forget(id string) bool {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.channels[id]; !ok {
		return false
	}
	delete(sh.channels, id)
	return true
}

// Clear removes every registered channel.
func (s *Store) Clear() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.channels = make(map[string]*Channel)
		sh.mu.Unlock()
	}
}

// Count returns the total number of registered channels.
func (s *Store) Count() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.channels)
		sh.mu.RUnlock()
	}
	return n
}

// IDs returns every registered channel id, in no particular order.
func (s *Store) IDs() []string {
	var ids []string
	for _, sh := range s.shards {
		sh.mu.RLock()
		for id := range sh.channels {
			ids = append(ids, id)
		}
		sh.mu.RUnlock()
	}
	return ids
}

// AllConfigs returns every registered channel's config, for snapshotting
// (internal/store).
func (s *Store) AllConfigs() []types.Config {
	var out []types.Config
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, ch := range sh.channels {
			out = append(out, ch.Config)
		}
		sh.mu.RUnlock()
	}
	return out
}

// BatchRegister registers each config independently, continuing past
// per-item failures and reporting anySucceeded alongside each item's
// result. Validation and pipeline compilation for every item run
// concurrently via a conc pool (a malformed schema/condition closure in
// one item must not take down its siblings); the prepared records are then
// applied to the shards single-threaded, in the caller's original order, so
// observable registration order matches input order even though preparation
// was concurrent.
func (s *Store) BatchRegister(cfgs []types.Config) (anySucceeded bool, results []types.BatchItemResult) {
	type prepared struct {
		ch  *Channel
		err error
	}
	out := make([]prepared, len(cfgs))

	p := pool.New().WithMaxGoroutines(maxBatchGoroutines(len(cfgs)))
	for i := range cfgs {
		i := i
		p.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					out[i] = prepared{err: fmt.Errorf("panic preparing channel %q: %v", cfgs[i].ID, r)}
				}
			}()
			ch, err := s.prepare(cfgs[i])
			out[i] = prepared{ch: ch, err: err}
		})
	}
	p.Wait()

	results = make([]types.BatchItemResult, len(cfgs))
	for i, cfg := range cfgs {
		if out[i].err != nil {
			results[i] = types.BatchItemResult{ID: cfg.ID, OK: false, Error: out[i].err.Error()}
			continue
		}
		s.apply(out[i].ch)
		results[i] = types.BatchItemResult{ID: cfg.ID, OK: true}
		anySucceeded = true
	}
	return anySucceeded, results
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
