package status

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory status store for tests and local runs
// where a missed duplicate notification is acceptable.
type MemoryRepository struct {
	mu   sync.RWMutex
	sent map[string]bool
}

// NewMemoryRepository creates an empty in-memory status repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sent: make(map[string]bool)}
}

// Sent reports whether the day's notification was recorded.
func (r *MemoryRepository) Sent(_ context.Context, day string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sent[day], nil
}

// MarkSent records the day's notification.
func (r *MemoryRepository) MarkSent(_ context.Context, day string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[day] = true
	return nil
}
