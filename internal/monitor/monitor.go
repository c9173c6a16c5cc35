// Package monitor tracks the live lifecycle of calls hosted on the remote
// voice platform: it polls for status, ingests out-of-band events,
// deduplicates them, derives coarse analytics, and republishes transitions
// to subscribers.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"voicewatch/internal/metrics"
	"voicewatch/internal/platform"
	"voicewatch/pkg/retry"
)

// ErrEmptyCallID is returned by Watch for a blank identifier.
var ErrEmptyCallID = errors.New("monitor: call id is required")

// CallFetcher is the narrow capability the monitor needs from the platform.
type CallFetcher interface {
	GetCall(ctx context.Context, id string) (platform.CallSnapshot, error)
}

// Config tunes the polling scheduler.
type Config struct {
	// Interval between poll sweeps.
	Interval time.Duration
	// MaxAttempts bounds the fetch attempts per call per sweep.
	MaxAttempts int
	// InitialDelay seeds the exponential backoff between attempts.
	InitialDelay time.Duration
	// GracePeriod keeps a completed call retrievable before removal.
	GracePeriod time.Duration
}

func (c Config) withDefaults() Config {
	out := c
	if out.Interval <= 0 {
		out.Interval = 4 * time.Second
	}
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 3
	}
	if out.InitialDelay <= 0 {
		out.InitialDelay = time.Second
	}
	if out.GracePeriod <= 0 {
		out.GracePeriod = 30 * time.Second
	}
	return out
}

// Monitor owns the call registry and the polling scheduler. The scheduler is
// dormant while nothing is tracked: watching the first call starts it,
// removing the last call stops it.
type Monitor struct {
	registry *Registry
	notifier *Notifier
	fetcher  CallFetcher
	cfg      Config
	log      *slog.Logger
	met      *metrics.Metrics

	// clock is injectable for deterministic tests.
	clock func() time.Time

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	evictions map[string]*time.Timer

	sweepInFlight atomic.Bool
}

func New(fetcher CallFetcher, cfg Config, log *slog.Logger, met *metrics.Metrics) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		registry:  NewRegistry(),
		notifier:  NewNotifier(log),
		fetcher:   fetcher,
		cfg:       cfg.withDefaults(),
		log:       log,
		met:       met,
		clock:     time.Now,
		evictions: make(map[string]*time.Timer),
	}
}

// Subscribe registers a notification handler; see Notifier.Subscribe.
func (m *Monitor) Subscribe(topic string, h Handler) func() {
	return m.notifier.Subscribe(topic, h)
}

// Watch starts tracking a call. Idempotent: watching an already-tracked id
// returns the existing record unchanged. The first watched call wakes the
// polling scheduler.
func (m *Monitor) Watch(id string, metadata map[string]string) (CallRecord, error) {
	if id == "" {
		return CallRecord{}, ErrEmptyCallID
	}
	now := m.clock().UTC()
	rec, created := m.registry.Add(id, metadata, now)
	if !created {
		return rec, nil
	}

	m.gaugeActive()
	m.emit(Notification{Topic: TopicCallAdded, CallID: id, Timestamp: now, Record: &rec})
	// The birth of a record is itself a transition, so observers see one
	// status_changed per lifecycle state.
	m.emit(Notification{Topic: TopicStatusChanged, CallID: id, Timestamp: now, Change: &StatusChange{
		CallID:    id,
		To:        StatusInitializing,
		Timestamp: now,
	}})
	m.start()
	return rec, nil
}

// Unwatch stops tracking a call. Removing the last call puts the scheduler
// back to sleep.
func (m *Monitor) Unwatch(id string) bool {
	m.cancelEviction(id)
	rec, ok := m.registry.Remove(id)
	if !ok {
		return false
	}

	m.gaugeActive()
	m.emit(Notification{Topic: TopicCallRemoved, CallID: id, Timestamp: m.clock().UTC(), Record: &rec})
	if m.registry.Len() == 0 {
		m.stopScheduler()
	}
	return true
}

// Get returns a snapshot of a tracked call.
func (m *Monitor) Get(id string) (CallRecord, bool) { return m.registry.Get(id) }

// List returns snapshots of all tracked calls. Order is not guaranteed.
func (m *Monitor) List() []CallRecord { return m.registry.List() }

// Active reports whether the polling scheduler is running.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Stop shuts the scheduler down and cancels pending evictions. In-flight
// sweeps are not aborted; their results may still apply. Best-effort, not
// transactional.
func (m *Monitor) Stop() {
	m.mu.Lock()
	timers := make([]*time.Timer, 0, len(m.evictions))
	for id, t := range m.evictions {
		timers = append(timers, t)
		delete(m.evictions, id)
	}
	m.mu.Unlock()
	for _, t := range timers {
		t.Stop()
	}
	m.stopScheduler()
}

func (m *Monitor) start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	stopCh := make(chan struct{})
	m.stopCh = stopCh
	m.mu.Unlock()

	m.log.Info("monitoring started", "interval", m.cfg.Interval)
	m.emit(Notification{Topic: TopicMonitoringStarted, Timestamp: m.clock().UTC()})
	go m.loop(stopCh)
}

func (m *Monitor) stopScheduler() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.log.Info("monitoring stopped")
	m.emit(Notification{Topic: TopicMonitoringStopped, Timestamp: m.clock().UTC()})
}

func (m *Monitor) loop(stopCh <-chan struct{}) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// A sweep slower than the interval would otherwise re-enter and
			// mutate the same records concurrently; overlapping ticks skip.
			if !m.sweepInFlight.CompareAndSwap(false, true) {
				if m.met != nil {
					m.met.SweepsSkipped.Inc()
				}
				m.log.Debug("sweep still in flight, skipping tick")
				continue
			}
			go func() {
				defer m.sweepInFlight.Store(false)
				m.sweep(context.Background())
			}()
		}
	}
}

// sweep refreshes every non-terminal call once, sequentially. One call's
// fetch failure is never fatal to the sweep.
func (m *Monitor) sweep(ctx context.Context) {
	if m.fetcher == nil {
		return
	}
	if m.met != nil {
		m.met.SweepsTotal.Inc()
	}

	for _, id := range m.registry.ActiveIDs() {
		snap, err := retry.Do(ctx, func(ctx context.Context) (platform.CallSnapshot, error) {
			return m.fetcher.GetCall(ctx, id)
		}, retry.Options{
			MaxAttempts:  m.cfg.MaxAttempts,
			InitialDelay: m.cfg.InitialDelay,
			// A missing call is not transient; don't burn the retry budget.
			RetryIf: func(err error) bool { return !errors.Is(err, platform.ErrNotFound) },
		})
		if err != nil {
			if m.met != nil {
				m.met.FetchFailures.Inc()
			}
			m.log.Warn("call fetch failed", "call_id", id, "err", err)
			m.emit(Notification{Topic: TopicError, CallID: id, Timestamp: m.clock().UTC(), Err: err})
			continue
		}
		m.applySnapshot(id, snap)
	}
}

// applySnapshot reconciles one polled snapshot: the reported status is
// applied first (it may move without an explicit event), then the event
// history goes through the regular ingestion path, which deduplicates.
func (m *Monitor) applySnapshot(id string, snap platform.CallSnapshot) {
	now := m.clock().UTC()

	if fetched, ok := StatusFromPlatform(snap.Status); ok {
		var change *StatusChange
		m.registry.Update(id, func(rec *CallRecord) {
			from := rec.Status
			if fetched != from && rec.advanceTo(fetched, now) {
				rec.LastUpdatedAt = now
				change = &StatusChange{CallID: id, From: from, To: rec.Status, Timestamp: now}
			}
		})
		if change != nil {
			m.emit(Notification{Topic: TopicStatusChanged, CallID: id, Timestamp: now, Change: change})
			if change.To == StatusCompleted {
				m.scheduleEviction(id)
			}
		}
	} else if snap.Status != "" {
		m.log.Debug("unrecognized platform status", "call_id", id, "status", snap.Status)
	}

	events := make([]CallEvent, 0, len(snap.Events))
	for _, ev := range snap.Events {
		events = append(events, CallEvent{ID: ev.ID, Type: ev.Type, Timestamp: ev.Timestamp, Data: ev.Data})
	}
	if err := m.Ingest(id, events); err != nil && !errors.Is(err, ErrNotWatched) {
		m.log.Warn("snapshot ingestion failed", "call_id", id, "err", err)
	}
}

// scheduleEviction queues removal of a completed call after the grace
// period, so late readers can still observe the final record.
func (m *Monitor) scheduleEviction(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.evictions[id]; ok {
		return
	}
	m.evictions[id] = time.AfterFunc(m.cfg.GracePeriod, func() {
		m.mu.Lock()
		delete(m.evictions, id)
		m.mu.Unlock()
		m.Unwatch(id)
	})
}

func (m *Monitor) cancelEviction(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.evictions[id]; ok {
		t.Stop()
		delete(m.evictions, id)
	}
}

func (m *Monitor) emit(ntf Notification) {
	if m.met != nil {
		m.met.Notifications.WithLabelValues(ntf.Topic).Inc()
	}
	m.notifier.Emit(ntf)
}

func (m *Monitor) gaugeActive() {
	if m.met != nil {
		m.met.ActiveCalls.Set(float64(m.registry.Len()))
	}
}
