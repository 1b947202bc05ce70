package gamestate

import (
	"encoding/json"
	"sync"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/store"
)

// Keeper guards the single round-state document. Every game service mutates
// state through Update, which schedules a coalesced persist; View is for
// read-only access. The callback must not retain the *State beyond the call.
type Keeper struct {
	mu    sync.Mutex
	state *domain.State
	queue *store.WriteQueue
}

// NewKeeper wraps the state loaded at startup and registers its snapshot
// with the write queue.
func NewKeeper(state *domain.State, queue *store.WriteQueue) *Keeper {
	k := &Keeper{state: state, queue: queue}
	queue.Register(store.DocState, k.snapshot)
	return k
}

// snapshot marshals the state under the keeper lock so the write queue
// never sees a torn document.
func (k *Keeper) snapshot() ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return json.Marshal(k.state)
}

// Update runs fn with exclusive access to the state and schedules a persist.
func (k *Keeper) Update(fn func(s *domain.State)) {
	k.mu.Lock()
	fn(k.state)
	k.mu.Unlock()
	k.queue.Schedule(store.DocState)
}

// View runs fn with exclusive access to the state without persisting.
func (k *Keeper) View(fn func(s *domain.State)) {
	k.mu.Lock()
	defer k.mu.Unlock()
	fn(k.state)
}

// Snapshot returns a deep copy of the state, safe to use without the lock.
func (k *Keeper) Snapshot() (*domain.State, error) {
	data, err := k.snapshot()
	if err != nil {
		return nil, err
	}
	copied := &domain.State{}
	if err := json.Unmarshal(data, copied); err != nil {
		return nil, err
	}
	return copied, nil
}
