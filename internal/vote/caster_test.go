package vote

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	votes     []model.Vote
	mutations int
	lists     int
	failWrite error
	failList  error
	// blockInsert, when set, holds InsertVote until it is closed
	blockInsert chan struct{}
	entered     chan struct{}
}

func (s *fakeStore) ListVotes(_ context.Context, ticketID uuid.UUID) ([]model.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.failList != nil {
		return nil, s.failList
	}
	var out []model.Vote
	for _, v := range s.votes {
		if v.TicketID == ticketID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *fakeStore) InsertVote(_ context.Context, v model.Vote) error {
	if s.blockInsert != nil {
		s.entered <- struct{}{}
		<-s.blockInsert
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	if s.failWrite != nil {
		return s.failWrite
	}
	s.votes = append(s.votes, v)
	return nil
}

func (s *fakeStore) UpdateVote(_ context.Context, id uuid.UUID, upvote bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	if s.failWrite != nil {
		return s.failWrite
	}
	for i := range s.votes {
		if s.votes[i].ID == id {
			s.votes[i].Upvote = upvote
		}
	}
	return nil
}

func (s *fakeStore) DeleteVote(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	if s.failWrite != nil {
		return s.failWrite
	}
	kept := s.votes[:0]
	for _, v := range s.votes {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	s.votes = kept
	return nil
}

type recordingRefresher struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingRefresher) ComplaintsChanged(_ context.Context, _ uuid.UUID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func TestCaster_Cast(t *testing.T) {
	ctx := context.Background()
	ticket := uuid.New()
	user := uuid.New()
	stranger := model.Vote{ID: uuid.New(), UserID: uuid.New(), TicketID: ticket, Upvote: false}

	t.Run("first up vote is inserted", func(t *testing.T) {
		store := &fakeStore{votes: []model.Vote{stranger}}
		refresher := &recordingRefresher{}
		caster := NewCaster(store, nil, refresher)

		out, err := caster.Cast(ctx, user, ticket, model.Up)
		require.NoError(t, err)

		assert.Equal(t, ActionInsert, out.Action)
		assert.Equal(t, 0, out.Net)
		assert.Equal(t, model.Up, out.Direction)
		assert.Equal(t, Notice{Level: LevelSuccess, Message: MsgVoteAdded}, out.Notice)
		assert.Equal(t, 1, store.mutations)
		assert.Equal(t, []string{"vote.insert"}, refresher.reasons)
	})

	t.Run("same direction toggles off", func(t *testing.T) {
		mine := model.Vote{ID: uuid.New(), UserID: user, TicketID: ticket, Upvote: true}
		store := &fakeStore{votes: []model.Vote{stranger, mine}}
		caster := NewCaster(store, nil, nil)

		out, err := caster.Cast(ctx, user, ticket, model.Up)
		require.NoError(t, err)

		assert.Equal(t, ActionDelete, out.Action)
		assert.Equal(t, -1, out.Net)
		assert.Equal(t, model.NoVote, out.Direction)
		assert.Equal(t, MsgVoteRemoved, out.Notice.Message)
		assert.Len(t, store.votes, 1)
	})

	t.Run("other direction flips the same record", func(t *testing.T) {
		mine := model.Vote{ID: uuid.New(), UserID: user, TicketID: ticket, Upvote: true}
		store := &fakeStore{votes: []model.Vote{stranger, mine}}
		caster := NewCaster(store, nil, nil)

		out, err := caster.Cast(ctx, user, ticket, model.Down)
		require.NoError(t, err)

		assert.Equal(t, ActionUpdate, out.Action)
		assert.Equal(t, -2, out.Net)
		assert.Equal(t, model.Down, out.Direction)
		assert.Equal(t, MsgVoteUpdated, out.Notice.Message)
		assert.Len(t, store.votes, 2)
	})

	t.Run("unauthenticated caller touches nothing", func(t *testing.T) {
		store := &fakeStore{votes: []model.Vote{stranger}}
		refresher := &recordingRefresher{}
		caster := NewCaster(store, nil, refresher)

		out, err := caster.Cast(ctx, uuid.Nil, ticket, model.Up)
		assert.ErrorIs(t, err, ErrAuthRequired)
		assert.Equal(t, Notice{Level: LevelError, Message: MsgSignInRequired}, out.Notice)
		assert.Zero(t, store.mutations)
		assert.Zero(t, store.lists)
		assert.Empty(t, refresher.reasons)
		assert.Equal(t, []model.Vote{stranger}, store.votes)
	})

	t.Run("failed write keeps the confirmed tally", func(t *testing.T) {
		store := &fakeStore{votes: []model.Vote{stranger}, failWrite: errors.New("connection reset")}
		refresher := &recordingRefresher{}
		caster := NewCaster(store, nil, refresher)

		out, err := caster.Cast(ctx, user, ticket, model.Up)
		require.Error(t, err)

		assert.Equal(t, -1, out.Net)
		assert.Equal(t, model.NoVote, out.Direction)
		assert.Equal(t, LevelError, out.Notice.Level)
		assert.Equal(t, 1, store.mutations)
		assert.Empty(t, refresher.reasons)
	})

	t.Run("failed load does not mutate", func(t *testing.T) {
		store := &fakeStore{failList: errors.New("timeout")}
		caster := NewCaster(store, nil, nil)

		out, err := caster.Cast(ctx, user, ticket, model.Down)
		require.Error(t, err)
		assert.Equal(t, MsgVoteUnavailable, out.Notice.Message)
		assert.Zero(t, store.mutations)
	})

	t.Run("invalid direction is rejected", func(t *testing.T) {
		store := &fakeStore{}
		caster := NewCaster(store, nil, nil)

		_, err := caster.Cast(ctx, user, ticket, model.NoVote)
		assert.ErrorIs(t, err, model.ErrInvalidDirection)
		assert.Zero(t, store.lists)
	})
}

func TestCaster_CastWhileInFlight(t *testing.T) {
	ctx := context.Background()
	ticket := uuid.New()
	user := uuid.New()

	store := &fakeStore{
		blockInsert: make(chan struct{}),
		entered:     make(chan struct{}, 1),
	}
	caster := NewCaster(store, NewLocalGuard(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := caster.Cast(ctx, user, ticket, model.Up)
		done <- err
	}()
	<-store.entered

	out, err := caster.Cast(ctx, user, ticket, model.Up)
	assert.ErrorIs(t, err, ErrVoteInFlight)
	assert.Equal(t, MsgVoteInFlight, out.Notice.Message)

	close(store.blockInsert)
	require.NoError(t, <-done)

	assert.Len(t, store.votes, 1)
	assert.Equal(t, 1, Tally(store.votes))
}

func TestCaster_CastOnVanishedVote(t *testing.T) {
	ctx := context.Background()
	ticket := uuid.New()
	user := uuid.New()

	for _, requested := range []model.Direction{model.Up, model.Down} {
		t.Run(requested.String(), func(t *testing.T) {
			mine := model.Vote{ID: uuid.New(), UserID: user, TicketID: ticket, Upvote: true}
			store := &fakeStore{votes: []model.Vote{mine}, failWrite: ErrVoteNotFound}
			refresher := &recordingRefresher{}
			caster := NewCaster(store, nil, refresher)

			out, err := caster.Cast(ctx, user, ticket, requested)
			assert.ErrorIs(t, err, ErrVoteInFlight)
			assert.ErrorIs(t, err, ErrVoteNotFound)
			assert.Equal(t, MsgVoteInFlight, out.Notice.Message)
			assert.Equal(t, LevelError, out.Notice.Level)
			assert.Equal(t, model.Up, out.Direction)
			assert.Empty(t, refresher.reasons)
		})
	}
}
