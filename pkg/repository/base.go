package repository

import (
	"time"

	"github.com/getmockd/commercemock/internal/id"
	"github.com/getmockd/commercemock/internal/storage"
)

// Base is the envelope every resource carries. Kinds embed it.
type Base struct {
	// ID is the unique identifier (UUID v4), immutable
	ID string `json:"id"`
	// Version starts at 1 and increases by one on every effective update
	Version int `json:"version"`
	// CreatedAt is when the resource was created, immutable
	CreatedAt time.Time `json:"createdAt"`
	// LastModifiedAt is refreshed on every version bump
	LastModifiedAt time.Time `json:"lastModifiedAt"`
}

// Envelope returns the embedded envelope.
func (b *Base) Envelope() *Base { return b }

// DocumentID implements storage.Document.
func (b *Base) DocumentID() string { return b.ID }

// DocumentKey implements storage.Document. Kinds with a key override it.
func (b *Base) DocumentKey() string { return "" }

// Resource is the constraint satisfied by every stored resource type.
// Implementations are pointer types embedding Base.
type Resource interface {
	storage.Document
	Envelope() *Base
}

// NewBase returns a fresh envelope: new id, version 1, both timestamps now.
// Timestamps are UTC with millisecond precision, the precision the platform
// reports, which also keeps JSON round trips lossless.
func NewBase(now time.Time) Base {
	now = normalizeTime(now)
	return Base{
		ID:             id.UUID(),
		Version:        1,
		CreatedAt:      now,
		LastModifiedAt: now,
	}
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
