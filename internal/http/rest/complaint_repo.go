package rest

import (
	"context"
	"errors"
	"log"

	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/bwise1/complaint_portal/util/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const complaintColumns = `
    c.ticket_id, c.created_at, c.updated_at, c.title, c.description,
    c.category, c.sub_category, c.is_public, c.status, c.image_id, c.image_url,
    c.user_id, u.email, u.display_name, u.avatar_url
`

func scanComplaint(row pgx.CollectableRow) (model.Complaint, error) {
	var c model.Complaint
	author := model.ComplaintAuthor{}
	err := row.Scan(
		&c.TicketID, &c.CreatedAt, &c.UpdatedAt, &c.Title, &c.Description,
		&c.Category, &c.SubCategory, &c.IsPublic, &c.Status, &c.ImageID, &c.ImageURL,
		&c.UserID, &author.Email, &author.DisplayName, &author.AvatarURL,
	)
	if err != nil {
		return model.Complaint{}, err
	}
	author.ID = c.UserID
	c.User = &author
	c.Votes = []model.Vote{}
	return c, nil
}

func (repo *Repo) listComplaints(ctx context.Context, where string, args ...any) ([]model.Complaint, error) {
	query := `SELECT ` + complaintColumns + `
        FROM complaints c
        JOIN users u ON u.id = c.user_id
        ` + where + `
        ORDER BY c.created_at DESC`

	rows, err := repo.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	complaints, err := pgx.CollectRows(rows, scanComplaint)
	if err != nil {
		return nil, err
	}

	if err := repo.attachVotes(ctx, complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

func (repo *Repo) ListComplaints(ctx context.Context) ([]model.Complaint, error) {
	return repo.listComplaints(ctx, "")
}

func (repo *Repo) ListPublicComplaints(ctx context.Context) ([]model.Complaint, error) {
	return repo.listComplaints(ctx, "WHERE c.is_public = TRUE")
}

// attachVotes loads the votes of every complaint in one query.
func (repo *Repo) attachVotes(ctx context.Context, complaints []model.Complaint) error {
	if len(complaints) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(complaints))
	index := make(map[uuid.UUID]int, len(complaints))
	for i, c := range complaints {
		ids[i] = c.TicketID
		index[c.TicketID] = i
	}

	rows, err := repo.DB.Query(ctx, `
        SELECT id, user_id, ticket_id, upvote, created_at
        FROM vote
        WHERE ticket_id = ANY($1)
        ORDER BY created_at, id`, ids)
	if err != nil {
		return err
	}
	votes, err := pgx.CollectRows(rows, scanVote)
	if err != nil {
		return err
	}

	for _, v := range votes {
		i := index[v.TicketID]
		complaints[i].Votes = append(complaints[i].Votes, v)
	}
	return nil
}

func (repo *Repo) GetComplaint(ctx context.Context, ticketID uuid.UUID) (model.Complaint, error) {
	rows, err := repo.DB.Query(ctx, `SELECT `+complaintColumns+`
        FROM complaints c
        JOIN users u ON u.id = c.user_id
        WHERE c.ticket_id = $1`, ticketID)
	if err != nil {
		return model.Complaint{}, err
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanComplaint)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Complaint{}, ErrComplaintNotFound
	}
	if err != nil {
		return model.Complaint{}, err
	}

	c.Votes, err = repo.ListVotes(ctx, ticketID)
	if err != nil {
		return model.Complaint{}, err
	}
	return c, nil
}

func (repo *Repo) CreateComplaint(ctx context.Context, c model.Complaint) (model.Complaint, error) {
	query := `
        INSERT INTO complaints (title, description, category, sub_category, is_public, status, user_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ticket_id, created_at, updated_at
    `
	err := repo.DB.QueryRow(ctx, query,
		c.Title, c.Description, c.Category, c.SubCategory, c.IsPublic, model.StatusNotStarted, c.UserID,
	).Scan(&c.TicketID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		log.Println("[Complaint]: insert failed:", err)
		return model.Complaint{}, err
	}
	c.Status = model.StatusNotStarted
	c.Votes = []model.Vote{}
	return c, nil
}

// UpdateComplaint rewrites the owner editable fields. Status and image are
// left as they are.
func (repo *Repo) UpdateComplaint(ctx context.Context, c model.Complaint) (model.Complaint, error) {
	query := `
        UPDATE complaints
        SET title = $1, description = $2, category = $3, sub_category = $4,
            is_public = $5, updated_at = NOW()
        WHERE ticket_id = $6 AND user_id = $7
    `
	cmd, err := repo.DB.Exec(ctx, query,
		c.Title, c.Description, c.Category, c.SubCategory, c.IsPublic, c.TicketID, c.UserID)
	if err != nil {
		return model.Complaint{}, err
	}
	if cmd.RowsAffected() == 0 {
		return model.Complaint{}, ErrComplaintNotFound
	}
	return repo.GetComplaint(ctx, c.TicketID)
}

// DeleteComplaint removes the complaint and returns it as it was, so the
// caller can clean up the attached image.
func (repo *Repo) DeleteComplaint(ctx context.Context, ticketID, userID uuid.UUID) (model.Complaint, error) {
	var c model.Complaint
	err := repo.DB.QueryRow(ctx, `
        DELETE FROM complaints
        WHERE ticket_id = $1 AND user_id = $2
        RETURNING ticket_id, title, category, sub_category, status, image_id, image_url, user_id`,
		ticketID, userID,
	).Scan(&c.TicketID, &c.Title, &c.Category, &c.SubCategory, &c.Status, &c.ImageID, &c.ImageURL, &c.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Complaint{}, ErrComplaintNotFound
	}
	return c, err
}

// SetComplaintImage stores the new image reference and returns the
// complaint with the previous reference, which the caller may delete.
func (repo *Repo) SetComplaintImage(ctx context.Context, ticketID, userID uuid.UUID, img storage.Image) (model.Complaint, error) {
	var previous model.Complaint
	err := repo.RunInTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
            SELECT ticket_id, image_id, image_url, user_id
            FROM complaints
            WHERE ticket_id = $1 AND user_id = $2
            FOR UPDATE`, ticketID, userID,
		).Scan(&previous.TicketID, &previous.ImageID, &previous.ImageURL, &previous.UserID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrComplaintNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
            UPDATE complaints
            SET image_id = $1, image_url = $2, updated_at = NOW()
            WHERE ticket_id = $3`, img.PublicID, img.URL, ticketID)
		return err
	})
	if err != nil {
		return model.Complaint{}, err
	}
	return previous, nil
}

func (repo *Repo) UpdateComplaintStatus(ctx context.Context, ticketID uuid.UUID, status model.Status) error {
	cmd, err := repo.DB.Exec(ctx,
		`UPDATE complaints SET status = $1, updated_at = NOW() WHERE ticket_id = $2`, status, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrComplaintNotFound
	}
	return nil
}
