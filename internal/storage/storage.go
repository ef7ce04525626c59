// Package storage defines the dedup store interface and its implementations.
package storage

import (
	"context"
	"errors"

	"sweep_radar/internal/model"
)

// ErrNotFound is returned when no seen record exists for an identifier.
var ErrNotFound = errors.New("record not found")

// Storage is the append-only store of entries that were already processed.
// There is deliberately no update or delete.
type Storage interface {
	// MarkSeen records an entry. Recording an existing id is a no-op.
	MarkSeen(ctx context.Context, rec model.SeenRecord) error
	IsSeen(ctx context.Context, id string) (bool, error)
	GetSeen(ctx context.Context, id string) (*model.SeenRecord, error)

	Close() error
}
