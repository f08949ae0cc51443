package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/submitbox/internal/logging"
)

// Registry is the in-memory store of submissions for the process lifetime.
// It is safe for concurrent use; every mutation holds the write lock for the
// duration of a single record change.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*SubmissionRecord
	order   []string
	newID   func() string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIDGenerator replaces the default UUID v4 id source.
// The generator must never repeat a value for the life of the registry.
func WithIDGenerator(gen func() string) RegistryOption {
	return func(r *Registry) {
		r.newID = gen
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		records: make(map[string]*SubmissionRecord),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create validates the metadata and stores a new unbound record.
// Returns the generated id, or a *ValidationError.
func (r *Registry) Create(ctx context.Context, in SubmissionInput) (string, error) {
	if err := ValidateSubmission(in); err != nil {
		return "", err
	}

	var height *int
	if in.Height != nil {
		h := *in.Height
		height = &h
	}

	r.mu.Lock()
	id := r.newID()
	if _, taken := r.records[id]; taken {
		r.mu.Unlock()
		return "", fmt.Errorf("id generator returned duplicate id %q", id)
	}
	r.records[id] = &SubmissionRecord{
		ID:     id,
		Name:   in.Name,
		Height: height,
	}
	r.order = append(r.order, id)
	r.mu.Unlock()

	submissionsCreated.Inc()
	logging.WithFields(ctx, "upload_id", id).Debug("submission created", "name_len", len(in.Name))

	return id, nil
}

// Bind records the accepted filename for id.
// Fails with ErrUnknownSubmission for ids never issued and ErrAlreadyBound
// if a file was bound earlier. Bind never creates a record.
func (r *Registry) Bind(id, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return ErrUnknownSubmission
	}
	if rec.File != nil {
		return ErrAlreadyBound
	}

	f := filename
	rec.File = &f
	return nil
}

// Exists reports whether id was issued by this registry.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.records[id]
	return ok
}

// Get returns a copy of the record for id.
// Returns false if not found.
func (r *Registry) Get(id string) (SubmissionRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return SubmissionRecord{}, false
	}
	return cloneRecord(rec), true
}

// ListUploaded returns copies of all bound records in creation order.
// The order is a convenience, not a guarantee.
func (r *Registry) ListUploaded() []SubmissionRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]SubmissionRecord, 0, len(r.order))
	for _, id := range r.order {
		rec := r.records[id]
		if rec.File == nil {
			continue
		}
		result = append(result, cloneRecord(rec))
	}
	return result
}

// Len returns the number of registered submissions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Stats returns the total and bound record counts.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{Total: len(r.records)}
	for _, rec := range r.records {
		if rec.File != nil {
			stats.Bound++
		}
	}
	return stats
}

// cloneRecord copies rec so callers cannot mutate registry state.
func cloneRecord(rec *SubmissionRecord) SubmissionRecord {
	out := SubmissionRecord{ID: rec.ID, Name: rec.Name}
	if rec.Height != nil {
		h := *rec.Height
		out.Height = &h
	}
	if rec.File != nil {
		f := *rec.File
		out.File = &f
	}
	return out
}
