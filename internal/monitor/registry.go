package monitor

import (
	"sync"
	"time"
)

// Registry is the in-memory source of truth for actively tracked calls.
//
// The source model mutates records from a single cooperative scheduler; here
// the registry mutex stands in for that, covering both map membership and
// record mutation (via Update). Reads hand out detached clones.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*CallRecord
}

func NewRegistry() *Registry {
	return &Registry{records: make(map[string]*CallRecord)}
}

// Add registers a call. Idempotent: an already-tracked id returns the
// existing record unchanged and created=false.
func (r *Registry) Add(id string, metadata map[string]string, now time.Time) (CallRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.records[id]; ok {
		return existing.clone(), false
	}

	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	rec := &CallRecord{
		ID:            id,
		Metadata:      md,
		Status:        StatusInitializing,
		Events:        []CallEvent{},
		CreatedAt:     now,
		LastUpdatedAt: now,
		seen:          make(map[string]struct{}),
	}
	r.records[id] = rec
	return rec.clone(), true
}

// Get returns a clone of the tracked record.
func (r *Registry) Get(id string) (CallRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return CallRecord{}, false
	}
	return rec.clone(), true
}

// List returns clones of all tracked records. Order is not guaranteed.
func (r *Registry) List() []CallRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CallRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.clone())
	}
	return out
}

// Remove drops a call and returns its final state.
func (r *Registry) Remove(id string) (CallRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return CallRecord{}, false
	}
	delete(r.records, id)
	return rec.clone(), true
}

// Update runs fn on the live record under the registry lock. Reports whether
// the id was tracked. fn must not call back into the registry.
func (r *Registry) Update(id string, fn func(*CallRecord)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return false
	}
	fn(rec)
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// ActiveIDs snapshots the ids of calls that have not reached a terminal
// status; these are the ones a poll sweep must refresh.
func (r *Registry) ActiveIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.records))
	for id, rec := range r.records {
		if rec.Status != StatusCompleted {
			out = append(out, id)
		}
	}
	return out
}
