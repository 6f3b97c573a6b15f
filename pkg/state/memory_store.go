package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryTarget is an in-memory Target intended for tests and examples. ReadErr
// and WriteErr, when set, are returned by the matching operation so callers can
// exercise failure paths.
type MemoryTarget struct {
	ReadErr  error
	WriteErr error

	mu       sync.RWMutex
	location string
	payload  []byte
	present  bool
	meta     Meta
	writes   int
}

// NewMemoryTarget returns an empty target identified by location.
func NewMemoryTarget(location string) *MemoryTarget {
	if location == "" {
		location = "memory://prefs.json"
	}
	return &MemoryTarget{location: location}
}

// Seed stores payload as if it had been written, without counting a write.
func (t *MemoryTarget) Seed(payload []byte) {
	t.mu.Lock()
	t.payload = clonePayload(payload)
	t.present = true
	t.mu.Unlock()
}

// Payload returns a copy of the stored document and whether one exists.
func (t *MemoryTarget) Payload() ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.present {
		return nil, false
	}
	return clonePayload(t.payload), true
}

// Writes reports how many successful writes the target has accepted.
func (t *MemoryTarget) Writes() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.writes
}

// Meta returns the metadata of the last successful write.
func (t *MemoryTarget) Meta() Meta {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta
}

func (t *MemoryTarget) Location() string {
	return t.location
}

func (t *MemoryTarget) Exists(ctx context.Context) (bool, error) {
	if err := contextErr(ctx); err != nil {
		return false, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.present, nil
}

func (t *MemoryTarget) Read(ctx context.Context) ([]byte, error) {
	if err := contextErr(ctx); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.ReadErr != nil {
		return nil, fmt.Errorf("state: read %q: %w", t.location, t.ReadErr)
	}
	if !t.present {
		return nil, fmt.Errorf("state: read %q: %w", t.location, ErrNotFound)
	}
	return clonePayload(t.payload), nil
}

func (t *MemoryTarget) Write(ctx context.Context, payload []byte) (Meta, error) {
	if err := contextErr(ctx); err != nil {
		return Meta{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.WriteErr != nil {
		return Meta{}, fmt.Errorf("state: write %q: %w", t.location, t.WriteErr)
	}
	t.payload = clonePayload(payload)
	t.present = true
	t.writes++
	t.meta = Meta{
		SnapshotID: uuid.NewString(),
		UpdatedAt:  time.Now().UTC(),
		Size:       len(payload),
	}
	return t.meta, nil
}

func clonePayload(payload []byte) []byte {
	if payload == nil {
		return []byte{}
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out
}
