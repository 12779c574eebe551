package rest

import (
	"context"
	"errors"

	"github.com/bwise1/complaint_portal/internal/db"
	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/bwise1/complaint_portal/internal/vote"
	"github.com/bwise1/complaint_portal/util/storage"
	"github.com/bwise1/complaint_portal/util/values"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrComplaintNotFound   = errors.New("complaint not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSubCategoryNotFound = errors.New("sub category not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrVoteNotFound        = vote.ErrVoteNotFound
)

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	// ListSubCategories returns every sub category when parentID is 0.
	ListSubCategories(ctx context.Context, parentID int64) ([]model.SubCategory, error)
	GetCategory(ctx context.Context, id int64) (model.Category, error)
	GetSubCategory(ctx context.Context, id int64) (model.SubCategory, error)
}

// ComplaintStore mutations that take a userID only touch rows owned by
// that user and return ErrComplaintNotFound otherwise.
type ComplaintStore interface {
	ListComplaints(ctx context.Context) ([]model.Complaint, error)
	ListPublicComplaints(ctx context.Context) ([]model.Complaint, error)
	GetComplaint(ctx context.Context, ticketID uuid.UUID) (model.Complaint, error)
	CreateComplaint(ctx context.Context, c model.Complaint) (model.Complaint, error)
	UpdateComplaint(ctx context.Context, c model.Complaint) (model.Complaint, error)
	DeleteComplaint(ctx context.Context, ticketID, userID uuid.UUID) (model.Complaint, error)
	SetComplaintImage(ctx context.Context, ticketID, userID uuid.UUID, img storage.Image) (model.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, ticketID uuid.UUID, status model.Status) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)
	SetUserRole(ctx context.Context, email string, role model.Role) error
}

type Store interface {
	CategoryStore
	ComplaintStore
	UserStore
	vote.Store
}

// Repo is the Postgres implementation of Store and vote.Store.
type Repo struct {
	DB      *pgxpool.Pool
	RunInTx func(ctx context.Context, fn func(pgx.Tx) error) error
}

var _ Store = (*Repo)(nil)

func NewRepo(database *db.DB) *Repo {
	return &Repo{DB: database.Pool(), RunInTx: database.RunInTx}
}

// storeError maps a store failure to a response status and message.
func storeError(err error, fallback string) (string, string) {
	switch {
	case errors.Is(err, ErrComplaintNotFound):
		return values.NotFound, "Complaint not found"
	case errors.Is(err, ErrCategoryNotFound):
		return values.NotFound, "Category not found"
	case errors.Is(err, ErrSubCategoryNotFound):
		return values.NotFound, "Sub category not found"
	case errors.Is(err, ErrUserNotFound):
		return values.NotFound, "User not found"
	}
	return values.Error, fallback
}
