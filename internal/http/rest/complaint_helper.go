package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/bwise1/complaint_portal/internal/complaint"
	"github.com/bwise1/complaint_portal/internal/filterstate"
	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/bwise1/complaint_portal/util/values"
	"github.com/google/uuid"
)

var errSubCategoryMismatch = errors.New("sub category does not belong to category")

func (api *API) savedFilters() filterstate.Reader {
	return api.Filters
}

// criteriaFor returns the listing criteria for a request: the query
// string when it carries any filter parameter, otherwise the caller's
// saved filters.
func (api *API) criteriaFor(r *http.Request, userID uuid.UUID) (complaint.Criteria, error) {
	params := r.URL.Query()
	if complaint.HasCriteria(params) {
		q, err := complaint.DecodeQuery(params)
		if err != nil {
			return complaint.Criteria{}, err
		}
		return api.resolveQuery(r.Context(), q)
	}
	if userID == uuid.Nil {
		return complaint.Criteria{}, nil
	}
	return api.savedFilters().Get(userID), nil
}

// resolveQuery turns category and sub category ids into the titles
// complaints are stored with.
func (api *API) resolveQuery(ctx context.Context, q complaint.Query) (complaint.Criteria, error) {
	if q.Category == "" && q.CategoryID > 0 {
		c, err := api.Store.GetCategory(ctx, q.CategoryID)
		if err != nil {
			return complaint.Criteria{}, err
		}
		q.Category = c.Title
	}
	if q.SubCategory == "" && q.SubCategoryID > 0 {
		sc, err := api.Store.GetSubCategory(ctx, q.SubCategoryID)
		if err != nil {
			return complaint.Criteria{}, err
		}
		q.SubCategory = sc.Title
	}
	return q.Criteria()
}

// resolveCategories looks up the titles for a submission.
func (api *API) resolveCategories(ctx context.Context, categoryID, subCategoryID int64) (string, string, error) {
	c, err := api.Store.GetCategory(ctx, categoryID)
	if err != nil {
		return "", "", err
	}
	sc, err := api.Store.GetSubCategory(ctx, subCategoryID)
	if err != nil {
		return "", "", err
	}
	if sc.ParentCategoryID != c.ID {
		return "", "", errSubCategoryMismatch
	}
	return c.Title, sc.Title, nil
}

func criteriaError(err error) (string, string) {
	if errors.Is(err, ErrCategoryNotFound) || errors.Is(err, ErrSubCategoryNotFound) {
		return storeError(err, "")
	}
	if errors.Is(err, model.ErrInvalidStatus) {
		return values.BadRequestBody, err.Error()
	}
	return values.BadRequestBody, "invalid filter parameters"
}

func (api *API) ListPublicComplaintsHelper(ctx context.Context, criteria complaint.Criteria) ([]model.Complaint, string, string, error) {
	all, err := api.Store.ListPublicComplaints(ctx)
	if err != nil {
		return nil, values.Error, "Failed to fetch complaints", err
	}
	return complaint.Public(complaint.Filter(all, criteria)), values.Success, "Complaints fetched successfully", nil
}

func (api *API) ListMyComplaintsHelper(ctx context.Context, userID uuid.UUID, criteria complaint.Criteria) ([]model.Complaint, string, string, error) {
	all, err := api.Store.ListComplaints(ctx)
	if err != nil {
		return nil, values.Error, "Failed to fetch complaints", err
	}
	return complaint.OwnedBy(complaint.Filter(all, criteria), userID), values.Success, "Complaints fetched successfully", nil
}

// GetComplaintHelper hides private complaints from everyone except the
// owner and admins.
func (api *API) GetComplaintHelper(ctx context.Context, ticketID, userID uuid.UUID, role model.Role) (model.Complaint, string, string, error) {
	c, err := api.Store.GetComplaint(ctx, ticketID)
	if err != nil {
		status, message := storeError(err, "Failed to fetch complaint")
		return model.Complaint{}, status, message, err
	}
	if !c.IsPublic && c.UserID != userID && role != model.RoleAdmin {
		return model.Complaint{}, values.NotFound, "Complaint not found", ErrComplaintNotFound
	}
	return c, values.Success, "Complaint fetched successfully", nil
}

func (api *API) complaintFromRequest(ctx context.Context, req model.CreateComplaintRequest) (model.Complaint, string, string, error) {
	category, subCategory, err := api.resolveCategories(ctx, req.CategoryID, req.SubCategoryID)
	if errors.Is(err, errSubCategoryMismatch) {
		return model.Complaint{}, values.BadRequestBody, err.Error(), err
	}
	if err != nil {
		status, message := storeError(err, "Failed to resolve category")
		if status == values.NotFound {
			status = values.BadRequestBody
		}
		return model.Complaint{}, status, message, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	return model.Complaint{
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		SubCategory: subCategory,
		IsPublic:    isPublic,
	}, values.Success, "", nil
}

func (api *API) CreateComplaintHelper(ctx context.Context, userID uuid.UUID, req model.CreateComplaintRequest) (model.Complaint, string, string, error) {
	c, status, message, err := api.complaintFromRequest(ctx, req)
	if err != nil {
		return model.Complaint{}, status, message, err
	}
	c.UserID = userID

	created, err := api.Store.CreateComplaint(ctx, c)
	if err != nil {
		return model.Complaint{}, values.Error, "Failed to submit complaint", err
	}
	return created, values.Created, "Complaint submitted successfully", nil
}

func (api *API) UpdateComplaintHelper(ctx context.Context, ticketID, userID uuid.UUID, req model.UpdateComplaintRequest) (model.Complaint, string, string, error) {
	c, status, message, err := api.complaintFromRequest(ctx, req)
	if err != nil {
		return model.Complaint{}, status, message, err
	}
	c.TicketID = ticketID
	c.UserID = userID

	updated, err := api.Store.UpdateComplaint(ctx, c)
	if err != nil {
		status, message := storeError(err, "Failed to update complaint")
		return model.Complaint{}, status, message, err
	}
	return updated, values.Success, "Complaint updated successfully", nil
}

func (api *API) DeleteComplaintHelper(ctx context.Context, ticketID, userID uuid.UUID) (model.Complaint, string, string, error) {
	deleted, err := api.Store.DeleteComplaint(ctx, ticketID, userID)
	if err != nil {
		status, message := storeError(err, "Failed to delete complaint")
		return model.Complaint{}, status, message, err
	}
	if deleted.HasImage() {
		api.removeImage(ctx, *deleted.ImageID)
	}
	return deleted, values.Success, "Complaint deleted successfully", nil
}
