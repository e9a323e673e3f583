package db

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-equipment/internal/models"
)

func TestConnectMongo_BadURI(t *testing.T) {
	client, err := ConnectMongo(context.Background(), "mongodb://bad:uri")
	if err == nil {
		t.Error("expected error for bad URI, got nil")
	}
	if client != nil {
		t.Error("expected nil client on error")
	}
}

func TestMongoRecordStore_NilCollection(t *testing.T) {
	ctx := context.Background()
	store := &MongoRecordStore{Collection: nil}

	_, err := store.All(ctx)
	assert.Error(t, err)
	assert.Error(t, store.Append(ctx, models.FleetRecord{ID: 1}))
	_, err = store.Insert(ctx, models.FleetRecord{})
	assert.Error(t, err)
	_, err = store.Count(ctx)
	assert.Error(t, err)
	assert.Error(t, store.Reset(ctx))
}

func TestRetryOnDuplicate(t *testing.T) {
	t.Run("succeeds after a taken id", func(t *testing.T) {
		calls := 0
		err := retryOnDuplicate(3, func() error {
			calls++
			if calls == 1 {
				return fmt.Errorf("%w: %d", ErrDuplicateID, 104)
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		calls := 0
		err := retryOnDuplicate(3, func() error {
			calls++
			return ErrDuplicateID
		})
		assert.ErrorIs(t, err, ErrDuplicateID)
		assert.Equal(t, 3, calls)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		calls := 0
		err := retryOnDuplicate(3, func() error {
			calls++
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 1, calls)
	})
}

// Integration test (requires running MongoDB)
func TestMongoRecordStore_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" || uri == "uri" {
		t.Skip("MONGO_URI not set or invalid, skipping integration test")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := ConnectMongo(ctx, uri)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
		return
	}
	defer client.Disconnect(context.Background())

	store := NewMongoRecordStore(client.Database("test_fleet").Collection("records"))
	require.NoError(t, store.Reset(ctx))

	rec, err := store.Insert(ctx, models.FleetRecord{Model: "first", Status: models.StatusOperational})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)

	require.NoError(t, store.Append(ctx, models.FleetRecord{ID: 103, Model: "seeded"}))
	assert.ErrorIs(t, store.Append(ctx, models.FleetRecord{ID: 103}), ErrDuplicateID)

	rec, err = store.Insert(ctx, models.FleetRecord{Model: "next"})
	require.NoError(t, err)
	assert.Equal(t, int64(104), rec.ID)

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Model)
	assert.Equal(t, "next", all[2].Model)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

// Integration test (requires running MongoDB): two stores stand in for two
// processes sharing one collection.
func TestMongoRecordStore_ConcurrentWriters(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" || uri == "uri" {
		t.Skip("MONGO_URI not set or invalid, skipping integration test")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, err := ConnectMongo(ctx, uri)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
		return
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_fleet").Collection("records_concurrent")
	first := NewMongoRecordStore(collection)
	second := NewMongoRecordStore(collection)
	require.NoError(t, first.Reset(ctx))

	var wg sync.WaitGroup
	var mu sync.Mutex
	ids := make(map[int64]bool)
	failures := 0
	for i := 0; i < 10; i++ {
		for _, store := range []*MongoRecordStore{first, second} {
			wg.Add(1)
			go func(store *MongoRecordStore) {
				defer wg.Done()
				rec, err := store.Insert(ctx, models.FleetRecord{Model: "concurrent"})
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failures++
					return
				}
				ids[rec.ID] = true
			}(store)
		}
	}
	wg.Wait()

	n, err := first.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(ids), n)
	assert.Equal(t, 20, len(ids)+failures)
	assert.GreaterOrEqual(t, len(ids), 10)
}
