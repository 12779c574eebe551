package rest

import (
	"context"
	"errors"

	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/bwise1/complaint_portal/internal/vote"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func scanVote(row pgx.CollectableRow) (model.Vote, error) {
	var v model.Vote
	err := row.Scan(&v.ID, &v.UserID, &v.TicketID, &v.Upvote, &v.CreatedAt)
	return v, err
}

func (repo *Repo) ListVotes(ctx context.Context, ticketID uuid.UUID) ([]model.Vote, error) {
	rows, err := repo.DB.Query(ctx, `
        SELECT id, user_id, ticket_id, upvote, created_at
        FROM vote
        WHERE ticket_id = $1
        ORDER BY created_at, id`, ticketID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanVote)
}

// InsertVote fails with vote.ErrVoteInFlight when another vote by the same
// user on the same complaint landed first.
func (repo *Repo) InsertVote(ctx context.Context, v model.Vote) error {
	_, err := repo.DB.Exec(ctx,
		`INSERT INTO vote (id, user_id, ticket_id, upvote) VALUES ($1, $2, $3, $4)`,
		v.ID, v.UserID, v.TicketID, v.Upvote)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return vote.ErrVoteInFlight
	}
	return err
}

func (repo *Repo) UpdateVote(ctx context.Context, voteID uuid.UUID, upvote bool) error {
	cmd, err := repo.DB.Exec(ctx, `UPDATE vote SET upvote = $1 WHERE id = $2`, upvote, voteID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVoteNotFound
	}
	return nil
}

func (repo *Repo) DeleteVote(ctx context.Context, voteID uuid.UUID) error {
	cmd, err := repo.DB.Exec(ctx, `DELETE FROM vote WHERE id = $1`, voteID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVoteNotFound
	}
	return nil
}
