package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/fleet-equipment/internal/models"
)

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()
	now := time.Now()

	store.Put(&Session{ID: "a", Principal: models.Principal{Role: models.RoleAdmin}, ExpiresAt: now.Add(time.Hour)})
	store.Put(&Session{ID: "b", Principal: models.Principal{Role: models.RoleOperator}, ExpiresAt: now.Add(-time.Minute)})
	assert.Equal(t, 2, store.Len())

	s, ok := store.Get("a")
	assert.True(t, ok)
	assert.Equal(t, models.RoleAdmin, s.Principal.Role)

	_, ok = store.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, 1, store.PruneExpired(now))
	_, ok = store.Get("b")
	assert.False(t, ok)

	assert.True(t, store.Delete("a"))
	assert.False(t, store.Delete("a"))
	assert.Zero(t, store.Len())
}
