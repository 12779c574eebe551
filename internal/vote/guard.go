package vote

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Guard admits one pending cast per key. Acquire fails with
// ErrVoteInFlight while the key is held.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func GuardKey(ticketID, userID uuid.UUID) string {
	return ticketID.String() + ":" + userID.String()
}

// LocalGuard is a Guard for a single process.
type LocalGuard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{pending: make(map[string]struct{})}
}

func (g *LocalGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.pending[key]; held {
		return nil, ErrVoteInFlight
	}
	g.pending[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.pending, key)
			g.mu.Unlock()
		})
	}, nil
}
