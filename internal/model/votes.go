package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Direction is the side of a vote. NoVote is what a user without a vote
// record on a complaint has.
type Direction uint8

const (
	NoVote Direction = iota
	Up
	Down
)

var ErrInvalidDirection = fmt.Errorf("direction must be %q or %q", Up, Down)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case NoVote:
		return ""
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// Weight is the contribution of a single vote in this direction to a tally.
func (d Direction) Weight() int {
	switch d {
	case Up:
		return 1
	case Down:
		return -1
	case NoVote:
		return 0
	}
	return 0
}

func ParseDirection(v string) (Direction, error) {
	switch v {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return NoVote, ErrInvalidDirection
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = NoVote
		return nil
	}
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DirectionOf converts the stored upvote flag.
func DirectionOf(upvote bool) Direction {
	if upvote {
		return Up
	}
	return Down
}

type Vote struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TicketID  uuid.UUID `json:"ticket_id"`
	Upvote    bool      `json:"upvote"`
	CreatedAt time.Time `json:"created_at"`
}

func (v Vote) Direction() Direction {
	return DirectionOf(v.Upvote)
}

type CastVoteRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}
