package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/ukydev/fleet-equipment/internal/models"
)

// MemoryRecordStore keeps fleet records in process memory. Its lifetime is
// the process lifetime.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records []models.FleetRecord
	ids     map[int64]struct{}
}

// NewMemoryRecordStore creates an empty in-memory store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{ids: make(map[int64]struct{})}
}

// All returns a copy of every stored record in insertion order.
func (s *MemoryRecordStore) All(ctx context.Context) ([]models.FleetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FleetRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Append stores a record with a caller-assigned id.
func (s *MemoryRecordStore) Append(ctx context.Context, record models.FleetRecord) error {
	if record.ID <= 0 {
		return fmt.Errorf("record id must be positive, got %d", record.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[record.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateID, record.ID)
	}
	s.append(record)
	return nil
}

// Insert assigns the next id and stores the record.
func (s *MemoryRecordStore) Insert(ctx context.Context, record models.FleetRecord) (models.FleetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = models.NextRecordID(s.records)
	s.append(record)
	return record, nil
}

// Count returns the number of stored records.
func (s *MemoryRecordStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *MemoryRecordStore) append(record models.FleetRecord) {
	s.records = append(s.records, record)
	s.ids[record.ID] = struct{}{}
}
