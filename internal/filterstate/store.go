// Package filterstate keeps each user's saved listing criteria.
package filterstate

import (
	"sync"

	"github.com/bwise1/complaint_portal/internal/complaint"
	"github.com/google/uuid"
)

// Store is owned by the API and handed to handlers as a Reader or used
// directly by the filter endpoints. Values are copied in and out.
type Store struct {
	mu    sync.RWMutex
	state map[uuid.UUID]complaint.Criteria
}

// Reader is the read-only projection given to listing handlers.
type Reader interface {
	Get(userID uuid.UUID) complaint.Criteria
}

func New() *Store {
	return &Store{state: make(map[uuid.UUID]complaint.Criteria)}
}

func (s *Store) Get(userID uuid.UUID) complaint.Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.state[userID])
}

func (s *Store) Set(userID uuid.UUID, c complaint.Criteria) complaint.Criteria {
	c = clone(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.IsEmpty() {
		delete(s.state, userID)
	} else {
		s.state[userID] = c
	}
	return clone(c)
}

func (s *Store) Reset(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, userID)
}

func clone(c complaint.Criteria) complaint.Criteria {
	if c.CreatedBefore != nil {
		t := *c.CreatedBefore
		c.CreatedBefore = &t
	}
	if c.Status != nil {
		s := *c.Status
		c.Status = &s
	}
	return c
}
