package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Read when no document exists at the location.
var ErrNotFound = errors.New("state: document not found")

// Meta is target-owned metadata describing the last successful write.
type Meta struct {
	SnapshotID string    `json:"snapshot_id,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
	Size       int       `json:"size"`
}

// Target checks for, reads and replaces one persisted document.
type Target interface {
	// Location identifies the document for logs and events.
	Location() string
	Exists(ctx context.Context) (bool, error)
	// Read returns the full document text.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces any prior content with payload.
	Write(ctx context.Context, payload []byte) (Meta, error)
}

func contextErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
