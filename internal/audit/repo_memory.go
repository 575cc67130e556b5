package audit

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepo keeps events in process, oldest first. With a positive limit
// only the newest limit events are retained.
type MemoryRepo struct {
	limit int

	mu     sync.Mutex
	events []Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

// NewBoundedMemoryRepo retains at most limit events.
func NewBoundedMemoryRepo(limit int) *MemoryRepo { return &MemoryRepo{limit: limit} }

func (r *MemoryRepo) Append(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = slices.Clone(r.events[len(r.events)-r.limit:])
	}
	return nil
}

func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// ByType returns the retained events of the given types, oldest first.
func (r *MemoryRepo) ByType(types ...EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if slices.Contains(types, e.Type) {
			out = append(out, e)
		}
	}
	return out
}
