package storage

import (
	"context"
	"errors"

	"house-finder/models"
)

// ErrCorruptStore means the persisted history could not be trusted. Nothing
// should run against a partially read history.
var ErrCorruptStore = errors.New("corrupt snapshot store")

// SnapshotStore is the interface any history backend must satisfy. Save
// replaces the whole persisted history; a failed Save leaves the previous
// history in place.
type SnapshotStore interface {
	Load(ctx context.Context) (models.History, error)
	Save(ctx context.Context, history models.History) error
	Close() error
}
