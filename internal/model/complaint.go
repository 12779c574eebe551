package model

import (
	"time"

	"github.com/google/uuid"
)

type Complaint struct {
	TicketID    uuid.UUID        `json:"ticket_id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	SubCategory string           `json:"sub_category"`
	IsPublic    bool             `json:"is_public"`
	Status      Status           `json:"status"`
	ImageID     *string          `json:"image_id,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	UserID      uuid.UUID        `json:"user_id"`
	User        *ComplaintAuthor `json:"user,omitempty"`
	Votes       []Vote           `json:"vote"`
}

// HasImage reports whether an image reference is attached.
func (c Complaint) HasImage() bool {
	return c.ImageID != nil && *c.ImageID != ""
}

type ComplaintAuthor struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
}

type CreateComplaintRequest struct {
	Title         string `json:"title" validate:"required,min=1,max=60"`
	Description   string `json:"description" validate:"required,min=10,max=250"`
	CategoryID    int64  `json:"category_id" validate:"required,gt=0"`
	SubCategoryID int64  `json:"sub_category_id" validate:"required,gt=0"`
	IsPublic      *bool  `json:"is_public"`
}

type UpdateComplaintRequest = CreateComplaintRequest

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"status"`
}

// AdminComplaint is a complaint as shown on the triage board.
type AdminComplaint struct {
	Complaint
	NetVotes int    `json:"net_votes"`
	Priority string `json:"priority"`
}
