package vote

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

var (
	ErrAuthRequired = errors.New("authentication required to vote")
	ErrVoteInFlight = errors.New("a vote on this complaint is already in progress")
	ErrVoteNotFound = errors.New("vote not found")
)

const (
	MsgVoteAdded       = "Added your vote."
	MsgVoteRemoved     = "Vote removed."
	MsgVoteUpdated     = "Vote updated."
	MsgSignInRequired  = "Please sign in to vote."
	MsgVoteInFlight    = "Your previous vote is still being saved."
	MsgVoteFailed      = "Could not save your vote."
	MsgVoteUnavailable = "Could not load votes for this complaint."
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is the transient message shown to the voter for one cast.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Outcome is what the caller sees after a cast: the tally and the
// caller's direction as last confirmed by the store.
type Outcome struct {
	Action    Action          `json:"action"`
	Net       int             `json:"net"`
	Direction model.Direction `json:"direction"`
	Notice    Notice          `json:"notice"`
}

type Store interface {
	ListVotes(ctx context.Context, ticketID uuid.UUID) ([]model.Vote, error)
	InsertVote(ctx context.Context, v model.Vote) error
	UpdateVote(ctx context.Context, voteID uuid.UUID, upvote bool) error
	DeleteVote(ctx context.Context, voteID uuid.UUID) error
}

// Refresher is told after every confirmed vote mutation so listings
// depending on the complaint can be re-fetched.
type Refresher interface {
	ComplaintsChanged(ctx context.Context, ticketID uuid.UUID, reason string)
}

type Caster struct {
	store     Store
	guard     Guard
	refresher Refresher
	newID     func() uuid.UUID
}

func NewCaster(store Store, guard Guard, refresher Refresher) *Caster {
	if guard == nil {
		guard = NewLocalGuard()
	}
	return &Caster{
		store:     store,
		guard:     guard,
		refresher: refresher,
		newID:     uuid.New,
	}
}

// Cast applies the toggle rules for userID on ticketID. A uuid.Nil user
// is rejected before the store is touched.
func (c *Caster) Cast(ctx context.Context, userID, ticketID uuid.UUID, requested model.Direction) (Outcome, error) {
	if userID == uuid.Nil {
		return Outcome{Notice: failure(MsgSignInRequired)}, ErrAuthRequired
	}
	if requested != model.Up && requested != model.Down {
		return Outcome{Notice: failure(MsgVoteFailed)}, model.ErrInvalidDirection
	}

	release, err := c.guard.Acquire(ctx, GuardKey(ticketID, userID))
	if err != nil {
		if errors.Is(err, ErrVoteInFlight) {
			return Outcome{Notice: failure(MsgVoteInFlight)}, err
		}
		return Outcome{Notice: failure(MsgVoteFailed)}, pkgerrors.Wrap(err, "acquire vote guard")
	}
	defer release()

	votes, err := c.store.ListVotes(ctx, ticketID)
	if err != nil {
		return Outcome{Notice: failure(MsgVoteUnavailable)}, pkgerrors.Wrapf(err, "list votes for %s", ticketID)
	}

	before := Outcome{
		Net:       Tally(votes),
		Direction: DirectionOf(votes, userID),
	}

	decision, err := Resolve(votes, userID, requested)
	if err != nil {
		before.Notice = failure(MsgVoteFailed)
		return before, err
	}
	before.Action = decision.Action

	newID := c.newID()
	switch decision.Action {
	case ActionInsert:
		err = c.store.InsertVote(ctx, model.Vote{
			ID:       newID,
			UserID:   userID,
			TicketID: ticketID,
			Upvote:   decision.Direction == model.Up,
		})
	case ActionUpdate:
		err = c.store.UpdateVote(ctx, decision.VoteID, decision.Direction == model.Up)
	case ActionDelete:
		err = c.store.DeleteVote(ctx, decision.VoteID)
	case ActionNone:
	}
	if errors.Is(err, ErrVoteNotFound) || errors.Is(err, ErrVoteInFlight) {
		// another request changed this vote after it was read
		before.Notice = failure(MsgVoteInFlight)
		return before, fmt.Errorf("%s vote: %w: %w", decision.Action, ErrVoteInFlight, err)
	}
	if err != nil {
		log.Printf("[Vote]: %s on %s failed: %v", decision.Action, ticketID, err)
		before.Notice = failure(MsgVoteFailed)
		return before, pkgerrors.Wrapf(err, "%s vote", decision.Action)
	}

	if c.refresher != nil {
		c.refresher.ComplaintsChanged(ctx, ticketID, "vote."+decision.Action.String())
	}

	after, err := c.store.ListVotes(ctx, ticketID)
	if err != nil {
		log.Printf("[Vote]: refetch after %s on %s failed: %v", decision.Action, ticketID, err)
		after = Apply(votes, decision, userID, ticketID, newID)
	}

	return Outcome{
		Action:    decision.Action,
		Net:       Tally(after),
		Direction: DirectionOf(after, userID),
		Notice:    success(decision.Action),
	}, nil
}

func success(a Action) Notice {
	msg := MsgVoteAdded
	switch a {
	case ActionDelete:
		msg = MsgVoteRemoved
	case ActionUpdate:
		msg = MsgVoteUpdated
	case ActionInsert, ActionNone:
	}
	return Notice{Level: LevelSuccess, Message: msg}
}

func failure(msg string) Notice {
	return Notice{Level: LevelError, Message: msg}
}
