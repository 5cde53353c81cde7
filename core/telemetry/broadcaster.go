// Package telemetry perturbs en-route truck state on a fixed cadence
// and fans the resulting snapshots out to subscribed observers.
package telemetry

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetgrid/supplyline/core/logger"
	"github.com/fleetgrid/supplyline/core/metrics"
	"github.com/fleetgrid/supplyline/core/model"
	"github.com/fleetgrid/supplyline/core/store"
)

// Update kinds delivered to subscribers.
const (
	UpdateSnapshot = "system_status"
	UpdateTick     = "real_time_update"
)

// Drift bounds applied per tick to en-route trucks and the global
// efficiency score.
const (
	positionJitter = 0.001
	fuelDriftMax   = 0.1
	co2DriftMax    = 0.3
	scoreDriftMax  = 0.5
	scoreCeiling   = 99.0
)

// Update is one payload delivered to a subscriber: either the full
// state snapshot sent on join or an incremental tick.
type Update struct {
	Type      string                   `json:"type"`
	Trucks    []model.TruckTelemetry   `json:"trucks,omitempty"`
	Snapshot  *model.StateSnapshot     `json:"snapshot,omitempty"`
	Metrics   model.PerformanceMetrics `json:"performance_metrics"`
	Timestamp time.Time                `json:"timestamp"`
}

// Subscriber is an observer handle. Updates arrive on a buffered
// channel in emission order; a subscriber that cannot keep up is
// dropped rather than blocking the tick.
type Subscriber struct {
	id string
	ch chan Update
}

// Updates returns the subscriber's delivery channel. The channel is
// closed when the subscriber is unsubscribed or dropped.
func (s *Subscriber) Updates() <-chan Update { return s.ch }

// Config holds broadcaster tuning.
type Config struct {
	IntervalSeconds int `json:"interval_seconds"`
	BufferSize      int `json:"buffer_size"`
}

// Interval returns the tick cadence, defaulting to 5 seconds.
func (c Config) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

func (c Config) buffer() int {
	if c.BufferSize <= 0 {
		return 8
	}
	return c.BufferSize
}

// Broadcaster runs the simulation drift and the subscriber fan-out.
// The random source is injected so tests can be deterministic; the
// broadcaster is the only goroutine using it.
type Broadcaster struct {
	store *store.FleetStore
	cfg   Config
	rng   *rand.Rand
	log   logger.Logger
	sink  metrics.MetricsSink

	mu     sync.Mutex
	subs   map[string]*Subscriber
	closed bool
}

// New creates a Broadcaster. A nil rng falls back to a time-seeded
// source; sink may be nil.
func New(st *store.FleetStore, cfg Config, rng *rand.Rand, log logger.Logger, sink metrics.MetricsSink) *Broadcaster {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Broadcaster{
		store: st,
		cfg:   cfg,
		rng:   rng,
		log:   log,
		sink:  sink,
		subs:  make(map[string]*Subscriber),
	}
}

// Subscribe registers a new observer and immediately delivers a full
// state snapshot. The snapshot is queued before the handle becomes
// visible to the fan-out, so no send can race a close of this channel.
func (b *Broadcaster) Subscribe() *Subscriber {
	sub := &Subscriber{id: uuid.NewString(), ch: make(chan Update, b.cfg.buffer())}
	snap := b.store.Snapshot()
	// The buffer is freshly allocated, so the snapshot always fits.
	sub.ch <- Update{
		Type:      UpdateSnapshot,
		Snapshot:  &snap,
		Metrics:   snap.Metrics,
		Timestamp: time.Now(),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub
	}
	b.subs[sub.id] = sub
	n := len(b.subs)
	b.mu.Unlock()

	if b.log != nil {
		b.log.Infof("observer connected, total subscribers: %d", n)
	}
	return sub
}

// Unsubscribe removes the observer and closes its channel. Safe to call
// for an already-dropped subscriber.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	cur, ok := b.subs[sub.id]
	if ok && cur == sub {
		delete(b.subs, sub.id)
		if !b.closed {
			close(sub.ch)
		}
	}
	n := len(b.subs)
	b.mu.Unlock()
	if ok && b.log != nil {
		b.log.Infof("observer disconnected, total subscribers: %d", n)
	}
}

// Run drives the tick loop until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.Tick()
		case <-ctx.Done():
			b.close()
			return
		}
	}
}

// Tick applies one simulation step: bounded random drift to every
// en-route truck and the global efficiency score, then fan-out of the
// resulting telemetry to all current subscribers.
func (b *Broadcaster) Tick() {
	trucks := b.store.Trucks()
	payload := make([]model.TruckTelemetry, 0, len(trucks))
	enRoute := 0
	for _, t := range trucks {
		if t.Status == model.StatusEnRoute {
			enRoute++
			err := b.store.MutateTruck(t.ID, func(tr *model.Truck) error {
				tr.Lat += b.uniform(-positionJitter, positionJitter)
				tr.Lng += b.uniform(-positionJitter, positionJitter)
				tr.FuelSaved += b.uniform(0, fuelDriftMax)
				tr.CO2Reduced += b.uniform(0, co2DriftMax)
				return nil
			})
			if err != nil && b.log != nil {
				b.log.Errorf("telemetry drift for %s: %v", t.ID, err)
			}
		}
		cur, err := b.store.GetTruck(t.ID)
		if err == nil {
			payload = append(payload, cur.Telemetry())
		}
	}

	b.store.UpdateMetrics(func(m *model.PerformanceMetrics) {
		m.EfficiencyScore += b.uniform(-scoreDriftMax, scoreDriftMax)
		if m.EfficiencyScore > scoreCeiling {
			m.EfficiencyScore = scoreCeiling
		}
	})
	m := b.store.Metrics()

	update := Update{
		Type:      UpdateTick,
		Trucks:    payload,
		Metrics:   m,
		Timestamp: time.Now(),
	}
	delivered := b.broadcast(update)

	if err := b.sink.RecordTick(metrics.TickEvent{
		EnRouteTrucks: enRoute,
		Subscribers:   delivered,
		Metrics:       m,
		Time:          update.Timestamp,
	}); err != nil && b.log != nil {
		b.log.Warnf("metrics sink: %v", err)
	}
}

// broadcast delivers the update to every registered subscriber. The
// sends are non-blocking, so the registry lock is held across the
// fan-out; channels are only ever closed under that same lock, which
// rules out a send racing a close. A subscriber whose buffer is full
// is dropped; the failure never reaches the other subscribers or the
// tick driver. Returns the delivery count.
func (b *Broadcaster) broadcast(u Update) int {
	b.mu.Lock()
	delivered := 0
	var dropped []*Subscriber
	for _, s := range b.subs {
		select {
		case s.ch <- u:
			delivered++
		default:
			dropped = append(dropped, s)
		}
	}
	for _, s := range dropped {
		delete(b.subs, s.id)
		close(s.ch)
	}
	b.mu.Unlock()

	if b.log != nil {
		for _, s := range dropped {
			b.log.Warnf("dropping slow observer %s", s.id)
		}
	}
	return delivered
}

func (b *Broadcaster) close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = make(map[string]*Subscriber)
	b.mu.Unlock()
}

// uniform returns a value in [lo, hi) from the injected source.
func (b *Broadcaster) uniform(lo, hi float64) float64 {
	return lo + b.rng.Float64()*(hi-lo)
}
