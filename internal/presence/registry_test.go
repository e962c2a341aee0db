package presence

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRegistryCountArithmetic(t *testing.T) {
	r := NewRegistry()

	users := make([]uuid.UUID, 5)
	for i := range users {
		users[i] = uuid.New()
	}

	for i, id := range users {
		assert.Equal(t, i+1, r.MarkConnected(id))
	}
	assert.Equal(t, 5, r.CurrentCount())

	// M disconnects leave N - M online.
	assert.Equal(t, 4, r.MarkDisconnected(users[0]))
	assert.Equal(t, 3, r.MarkDisconnected(users[1]))
	assert.Equal(t, 3, r.CurrentCount())
	assert.False(t, r.IsOnline(users[0]))
	assert.True(t, r.IsOnline(users[2]))
}

func TestRegistryDisconnectAbsentIsNoop(t *testing.T) {
	r := NewRegistry()
	known := uuid.New()
	r.MarkConnected(known)

	assert.Equal(t, 1, r.MarkDisconnected(uuid.New()))
	assert.Equal(t, 1, r.CurrentCount())
}

func TestRegistryMultiDeviceRefCounting(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()

	// Two devices, one user: count stays at one.
	assert.Equal(t, 1, r.MarkConnected(id))
	assert.Equal(t, 1, r.MarkConnected(id))

	// First device leaving keeps the user online.
	assert.Equal(t, 1, r.MarkDisconnected(id))
	assert.True(t, r.IsOnline(id))

	// Last device leaving takes the user offline.
	assert.Equal(t, 0, r.MarkDisconnected(id))
	assert.False(t, r.IsOnline(id))
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	a, b := uuid.New(), uuid.New()
	r.MarkConnected(a)
	r.MarkConnected(b)
	r.MarkConnected(b)

	got := r.SnapshotOnlineUserIDs()
	assert.ElementsMatch(t, []uuid.UUID{a, b}, got)
}

func TestRegistryConcurrentMarks(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.MarkConnected(id)
		}()
		go func() {
			defer wg.Done()
			r.MarkConnected(uuid.New())
		}()
	}
	wg.Wait()

	assert.True(t, r.IsOnline(id))
	assert.Equal(t, 51, r.CurrentCount())

	for i := 0; i < 50; i++ {
		r.MarkDisconnected(id)
	}
	assert.False(t, r.IsOnline(id))
}
