// Package vote holds the vote tally and the toggle resolver that decides
// whether a cast inserts, flips or removes the caller's vote.
package vote

import (
	"fmt"

	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/google/uuid"
)

type Action uint8

const (
	ActionNone Action = iota
	ActionInsert
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	case ActionNone:
		return "none"
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	for _, candidate := range []Action{ActionNone, ActionInsert, ActionUpdate, ActionDelete} {
		if candidate.String() == string(text) {
			*a = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown vote action %q", text)
}

// Decision is the single mutation a cast resolves to. VoteID is set for
// updates and deletes; Direction is the direction to store for inserts
// and updates.
type Decision struct {
	Action    Action
	VoteID    uuid.UUID
	Direction model.Direction
}

// Tally is the net count: +1 per up vote, -1 per down vote.
func Tally(votes []model.Vote) int {
	net := 0
	for _, v := range votes {
		net += v.Direction().Weight()
	}
	return net
}

// DirectionOf returns the direction of userID's vote, or NoVote.
func DirectionOf(votes []model.Vote, userID uuid.UUID) model.Direction {
	if v, ok := find(votes, userID); ok {
		return v.Direction()
	}
	return model.NoVote
}

func find(votes []model.Vote, userID uuid.UUID) (model.Vote, bool) {
	for _, v := range votes {
		if v.UserID == userID {
			return v, true
		}
	}
	return model.Vote{}, false
}

// Resolve maps the caller's existing vote and the requested direction to
// a decision: no vote inserts, the same direction removes, the other
// direction updates in place.
func Resolve(votes []model.Vote, userID uuid.UUID, requested model.Direction) (Decision, error) {
	switch requested {
	case model.Up, model.Down:
	case model.NoVote:
		return Decision{}, model.ErrInvalidDirection
	default:
		return Decision{}, model.ErrInvalidDirection
	}

	existing, ok := find(votes, userID)
	if !ok {
		return Decision{Action: ActionInsert, Direction: requested}, nil
	}

	switch current := existing.Direction(); current {
	case requested:
		return Decision{Action: ActionDelete, VoteID: existing.ID}, nil
	case model.Up, model.Down:
		return Decision{Action: ActionUpdate, VoteID: existing.ID, Direction: requested}, nil
	default:
		return Decision{}, fmt.Errorf("stored vote %s has no direction", existing.ID)
	}
}

// Apply returns a copy of votes with the decision carried out. It is used
// when the store cannot be re-read after a confirmed mutation.
func Apply(votes []model.Vote, d Decision, userID, ticketID uuid.UUID, newID uuid.UUID) []model.Vote {
	out := make([]model.Vote, 0, len(votes)+1)
	switch d.Action {
	case ActionInsert:
		out = append(out, votes...)
		out = append(out, model.Vote{
			ID:       newID,
			UserID:   userID,
			TicketID: ticketID,
			Upvote:   d.Direction == model.Up,
		})
	case ActionUpdate:
		for _, v := range votes {
			if v.ID == d.VoteID {
				v.Upvote = d.Direction == model.Up
			}
			out = append(out, v)
		}
	case ActionDelete:
		for _, v := range votes {
			if v.ID != d.VoteID {
				out = append(out, v)
			}
		}
	case ActionNone:
		out = append(out, votes...)
	}
	return out
}
