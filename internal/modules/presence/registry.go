package presence

import "sync"

// Registry is the single shared heartbeat store: uid → Record. One process
// owns it; there is no persistence. Writes replace the whole record for a
// uid (last write wins), snapshots copy every record under the read lock
// so no caller can observe a half-written pair. The lock is never held
// across network I/O.
type Registry struct {
	mu             sync.RWMutex
	records        map[string]Record
	onlineTTL      int64
	activityWindow int64
}

// NewRegistry creates an empty registry with the given classification
// thresholds, both in seconds.
func NewRegistry(onlineTTL, activityWindow int64) *Registry {
	return &Registry{
		records:        make(map[string]Record),
		onlineTTL:      onlineTTL,
		activityWindow: activityWindow,
	}
}

// RecordHeartbeat inserts or overwrites the record for uid. Duplicate and
// out-of-order calls are accepted as-is; the newest call wins regardless
// of the timestamp values it carries.
func (r *Registry) RecordHeartbeat(uid string, lastActivity, receivedAt int64) {
	r.mu.Lock()
	r.records[uid] = Record{
		UID:          uid,
		LastSeen:     receivedAt,
		LastActivity: lastActivity,
	}
	r.mu.Unlock()
}

// Get returns the record for uid, if present.
func (r *Registry) Get(uid string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[uid]
	return rec, ok
}

// Snapshot returns a consistent point-in-time copy of all records. Order
// is not significant.
func (r *Registry) Snapshot() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out
}

// Summarize takes a snapshot and classifies it at the given instant.
func (r *Registry) Summarize(now int64) Summary {
	return Classify(r.Snapshot(), now, r.onlineTTL, r.activityWindow)
}

// Len returns the number of records currently held, online or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Sweep drops records whose LastSeen is older than ttl seconds before now
// and reports how many were removed. Visitors that merely aged out of the
// online classification are untouched as long as ttl exceeds the online
// threshold; callers configure ttl as a large multiple of it.
func (r *Registry) Sweep(now, ttl int64) int {
	cutoff := now - ttl
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for uid, rec := range r.records {
		if rec.LastSeen < cutoff {
			delete(r.records, uid)
			removed++
		}
	}
	return removed
}
