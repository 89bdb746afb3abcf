package registry

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"reelscan/internal/logging"
)

// Persister writes a full registry snapshot to durable storage.
type Persister interface {
	Save(ctx context.Context, records []Record) error
}

// DeleteHook runs for a record about to be removed, before the entry is
// dropped. Used for cached-artifact cleanup.
type DeleteHook func(record Record)

// Registry is the shared scan state: a record map plus a scanned-paths
// membership set behind one mutex. Every mutation persists the full snapshot
// synchronously before the lock is released, so durable state always matches
// memory. Persistence failures are logged and the in-memory mutation stands.
type Registry struct {
	mu         sync.Mutex
	records    map[string]Record
	paths      map[string]struct{}
	persister  Persister
	deleteHook DeleteHook
	logger     *slog.Logger
}

// New constructs an empty registry. persister may be nil for purely
// in-memory use.
func New(persister Persister, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		records:   make(map[string]Record),
		paths:     make(map[string]struct{}),
		persister: persister,
		logger:    logging.WithComponent(logger, "registry"),
	}
}

// SetDeleteHook installs the cleanup hook run before a record is dropped.
func (r *Registry) SetDeleteHook(hook DeleteHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteHook = hook
}

// Load replaces the registry contents with previously persisted records.
// Does not trigger persistence.
func (r *Registry) Load(records []Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string]Record, len(records))
	r.paths = make(map[string]struct{}, len(records))
	for _, record := range records {
		r.records[record.Path] = record
		r.paths[record.Path] = struct{}{}
	}
}

// Contains reports whether the path is already recorded.
func (r *Registry) Contains(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.paths[path]
	return ok
}

// Get returns the record for a path.
func (r *Registry) Get(path string) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[path]
	return record, ok
}

// Upsert inserts or replaces the record for its path and persists the full
// snapshot before releasing the lock. Two racing writers for the same path
// serialize here; the last writer wins.
func (r *Registry) Upsert(ctx context.Context, record Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.Path] = record
	r.paths[record.Path] = struct{}{}
	r.persistLocked(ctx)
}

// Remove drops the record and membership entry for a path. Membership is
// re-checked under the lock because a concurrent remover may have won; the
// call is a no-op for absent paths. The delete hook runs before the entry is
// dropped.
func (r *Registry) Remove(ctx context.Context, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[path]
	if !ok {
		return false
	}
	if r.deleteHook != nil {
		r.deleteHook(record)
	}
	delete(r.records, path)
	delete(r.paths, path)
	r.persistLocked(ctx)
	return true
}

// Snapshot returns every record ordered by path.
func (r *Registry) Snapshot() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Paths returns the scanned-paths set ordered lexically.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.paths))
	for path := range r.paths {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of recorded files.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *Registry) persistLocked(ctx context.Context) {
	if r.persister == nil {
		return
	}
	snapshot := make([]Record, 0, len(r.records))
	for _, record := range r.records {
		snapshot = append(snapshot, record)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Path < snapshot[j].Path })
	if err := r.persister.Save(ctx, snapshot); err != nil {
		r.logger.Error("persist registry snapshot", logging.Error(err))
	}
}
