package presence

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks which users currently hold at least one live connection.
// It is process-wide, purely in-memory, and starts empty on every restart.
// Connections are reference-counted per user, so a user with several devices
// stays online until the last one disconnects.
//
// The registry never broadcasts. Mark transitions return the updated distinct
// user count; the connection lifecycle handler owns triggering exactly one
// notification per transition.
type Registry struct {
	mu   sync.RWMutex
	refs map[uuid.UUID]int
}

func NewRegistry() *Registry {
	return &Registry{
		refs: make(map[uuid.UUID]int),
	}
}

// MarkConnected records one more live connection for the user and returns
// the distinct online user count.
func (r *Registry) MarkConnected(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refs[userID]++
	return len(r.refs)
}

// MarkDisconnected records one connection gone for the user and returns the
// distinct online user count. Disconnecting an absent user is a no-op.
func (r *Registry) MarkDisconnected(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n, ok := r.refs[userID]; ok {
		if n <= 1 {
			delete(r.refs, userID)
		} else {
			r.refs[userID] = n - 1
		}
	}
	return len(r.refs)
}

// CurrentCount returns the number of distinct online users.
func (r *Registry) CurrentCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.refs)
}

// IsOnline reports whether the user holds at least one live connection.
func (r *Registry) IsOnline(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.refs[userID]
	return ok
}

// SnapshotOnlineUserIDs returns the ids of all online users at this instant.
func (r *Registry) SnapshotOnlineUserIDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.refs))
	for id := range r.refs {
		ids = append(ids, id)
	}
	return ids
}
