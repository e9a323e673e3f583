package db

import (
	"context"
	"errors"

	"github.com/ukydev/fleet-equipment/internal/models"
)

// ErrDuplicateID is returned when a record with the same id is already stored.
var ErrDuplicateID = errors.New("duplicate record id")

// RecordStore defines the interface for fleet record storage. Records are
// append-only and returned in insertion order.
type RecordStore interface {
	// All returns every stored record.
	All(ctx context.Context) ([]models.FleetRecord, error)
	// Append stores a record that already carries its id.
	Append(ctx context.Context, record models.FleetRecord) error
	// Insert assigns the next id (max + 1, or 1 when empty) and stores the
	// record. Computing the id and appending happen atomically.
	Insert(ctx context.Context, record models.FleetRecord) (models.FleetRecord, error)
	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
