package metrics

import (
	"errors"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/serialx/hashring"
	"go.uber.org/multierr"
)

// IDCounters are the per-id tallies exposed by IDSnapshot.
type IDCounters struct {
	Calls      int64
	Executions int64
	Errors     int64
	LastCallMs int64
	LastExecMs int64
}

type idShard struct {
	mu       sync.Mutex
	counters map[string]*IDCounters
}

// Sensor is the Metrics & Sensor component: a ring buffer of recent records,
// per-id counters sharded across a hash ring (mirroring the channel store's
// sharding, internal/channel.Store), and global totals feeding the
// breathing loop's callRate input.
type Sensor struct {
	ring *ring

	ringShard *hashring.HashRing
	idShards  map[string]*idShard

	startMs int64

	globalMu       sync.Mutex
	totalCalls     int64
	totalExecs     int64
	totalErrors    int64
	totalThrottled int64
	totalDebounced int64
	totalBlocked   int64

	registerer prometheus.Registerer
	prom       *promCollectors
}

// NewSensor creates a Sensor with the given ring capacity and shard count.
func NewSensor(ringCapacity, numShards int, startMs int64, reg prometheus.Registerer) *Sensor {
	if numShards < 1 {
		numShards = 1
	}
	names := make([]string, numShards)
	shards := make(map[string]*idShard, numShards)
	for i := 0; i < numShards; i++ {
		name := strconv.Itoa(i)
		names[i] = name
		shards[name] = &idShard{counters: make(map[string]*IDCounters)}
	}
	s := &Sensor{
		ring:       newRing(ringCapacity),
		ringShard:  hashring.New(names),
		idShards:   shards,
		startMs:    startMs,
		registerer: reg,
	}
	if reg != nil {
		s.prom = newPromCollectors(reg)
	}
	return s
}

// Close unregisters every Prometheus collector this Sensor registered, so a
// fresh Sensor can be created against the same registerer (engine restart
// after Shutdown). Failures to unregister each collector are aggregated
// with multierr rather than stopping at the first one, so one stuck
// collector doesn't hide the rest.
func (s *Sensor) Close() error {
	if s.prom == nil || s.registerer == nil {
		return nil
	}
	collectors := []prometheus.Collector{
		s.prom.calls,
		s.prom.dispatchLatency,
		s.prom.stress,
		s.prom.recuperating,
		s.prom.breathCount,
	}
	var err error
	for _, c := range collectors {
		if !s.registerer.Unregister(c) {
			err = multierr.Append(err, errors.New("metrics: failed to unregister collector"))
		}
	}
	return err
}

func (s *Sensor) shardFor(id string) *idShard {
	name, ok := s.ringShard.GetNode(id)
	if !ok {
		for _, sh := range s.idShards {
			return sh
		}
	}
	return s.idShards[name]
}

func (s *Sensor) countersFor(id string) *IDCounters {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	c, ok := sh.counters[id]
	if !ok {
		c = &IDCounters{}
		sh.counters[id] = c
	}
	return c
}

// Record appends an event and updates all derived counters.
func (s *Sensor) Record(nowMs int64, id string, kind Kind, meta map[string]any) {
	s.ring.push(Record{TsMs: nowMs, ID: id, Kind: kind, Meta: meta})

	c := s.countersFor(id)
	switch kind {
	case KindCall:
		c.Calls++
		c.LastCallMs = nowMs
	case KindExecution:
		c.Executions++
		c.LastExecMs = nowMs
	case KindError:
		c.Errors++
	}

	s.globalMu.Lock()
	switch kind {
	case KindCall:
		s.totalCalls++
	case KindExecution:
		s.totalExecs++
	case KindError:
		s.totalErrors++
	case KindThrottled:
		s.totalThrottled++
	case KindDebounced:
		s.totalDebounced++
	case KindBlocked:
		s.totalBlocked++
	}
	s.globalMu.Unlock()

	if s.prom != nil {
		s.prom.observe(id, kind)
	}
}

// IDSnapshot returns a copy of the counters tracked for id.
func (s *Sensor) IDSnapshot(id string) (IDCounters, bool) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	c, ok := sh.counters[id]
	if !ok {
		return IDCounters{}, false
	}
	return *c, true
}

// Global is the engine-wide counter snapshot.
type Global struct {
	TotalCalls     int64
	TotalExecs     int64
	TotalErrors    int64
	TotalThrottled int64
	TotalDebounced int64
	TotalBlocked   int64
	StartMs        int64
	CallRate       float64 // totalCalls / elapsed_s
}

// GlobalSnapshot returns the current global counters, computing callRate
// against nowMs.
func (s *Sensor) GlobalSnapshot(nowMs int64) Global {
	s.globalMu.Lock()
	defer s.globalMu.Unlock()
	elapsedS := float64(nowMs-s.startMs) / 1000
	var rate float64
	if elapsedS > 0 {
		rate = float64(s.totalCalls) / elapsedS
	}
	return Global{
		TotalCalls:     s.totalCalls,
		TotalExecs:     s.totalExecs,
		TotalErrors:    s.totalErrors,
		TotalThrottled: s.totalThrottled,
		TotalDebounced: s.totalDebounced,
		TotalBlocked:   s.totalBlocked,
		StartMs:        s.startMs,
		CallRate:       rate,
	}
}

// Query is the filter set accepted by Export: by id, kind, a minimum
// timestamp, and a result-count cap.
type Query struct {
	ID    string
	Kind  Kind
	Since int64
	Limit int
}

// Export returns ring records matching q, newest-last, honoring Limit as a
// cap on the number of returned records (most recent Limit entries).
func (s *Sensor) Export(q Query) []Record {
	all := s.ring.snapshot()
	var out []Record
	for _, rec := range all {
		if q.ID != "" && rec.ID != q.ID {
			continue
		}
		if q.Kind != "" && rec.Kind != q.Kind {
			continue
		}
		if q.Since > 0 && rec.TsMs < q.Since {
			continue
		}
		out = append(out, rec)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out
}

// ErrorRate returns total errors divided by total executions since the
// sensor was created.
func (s *Sensor) ErrorRate() float64 {
	s.globalMu.Lock()
	defer s.globalMu.Unlock()
	if s.totalExecs == 0 {
		return 0
	}
	return float64(s.totalErrors) / float64(s.totalExecs)
}

// promCollectors wraps the promauto-registered Cyre metrics.
type promCollectors struct {
	calls           *prometheus.CounterVec
	dispatchLatency prometheus.Histogram
	stress          prometheus.Gauge
	recuperating    prometheus.Gauge
	breathCount     prometheus.Counter
}

func newPromCollectors(reg prometheus.Registerer) *promCollectors {
	factory := promauto.With(reg)
	return &promCollectors{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cyre_calls_total",
			Help: "Count of Cyre channel events by kind.",
		}, []string{"channel", "kind"}),
		dispatchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cyre_dispatch_latency_seconds",
			Help:    "Time spent in the subscriber handler.",
			Buckets: prometheus.DefBuckets,
		}),
		stress: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cyre_stress",
			Help: "Current fused stress scalar, 0..1.",
		}),
		recuperating: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cyre_recuperating",
			Help: "1 if the breathing pattern is RECOVERY, else 0.",
		}),
		breathCount: factory.NewCounter(prometheus.CounterOpts{
			Name: "cyre_breath_count_total",
			Help: "Number of breathing ticks processed.",
		}),
	}
}

func (p *promCollectors) observe(id string, kind Kind) {
	p.calls.WithLabelValues(id, string(kind)).Inc()
}

// ObserveDispatchLatency records one handler's execution duration.
func (s *Sensor) ObserveDispatchLatency(seconds float64) {
	if s.prom != nil {
		s.prom.dispatchLatency.Observe(seconds)
	}
}

// SetBreathingGauges updates the Prometheus stress/recuperating gauges and
// increments the breath counter after a breathing tick.
func (s *Sensor) SetBreathingGauges(stress float64, recuperating bool) {
	if s.prom == nil {
		return
	}
	s.prom.stress.Set(stress)
	if recuperating {
		s.prom.recuperating.Set(1)
	} else {
		s.prom.recuperating.Set(0)
	}
	s.prom.breathCount.Inc()
}
