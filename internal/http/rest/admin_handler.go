package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bwise1/complaint_portal/internal/complaint"
	"github.com/bwise1/complaint_portal/internal/events"
	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/bwise1/complaint_portal/util"
	"github.com/bwise1/complaint_portal/util/values"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxPageSize = 100

type AdminComplaintPage struct {
	Complaints []model.AdminComplaint `json:"complaints"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
}

func (api *API) AdminRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Use(api.RequireAdmin)
		r.Method(http.MethodGet, "/complaints", Handler(api.ListAdminComplaints))
		r.Method(http.MethodPatch, "/complaints/{ticketID}/status", Handler(api.UpdateComplaintStatus))
	})

	return mux
}

func (api *API) ListAdminComplaints(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	criteria, err := api.criteriaFor(r, userID)
	if err != nil {
		status, message := criteriaError(err)
		return respondWithError(err, message, status, &tc)
	}

	page, pageSize, err := pagination(r)
	if err != nil {
		return respondWithError(err, "page and page_size must be positive numbers", values.BadRequestBody, &tc)
	}

	result, status, message, err := api.ListAdminComplaintsHelper(r.Context(), criteria, page, pageSize)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return respondWithData(message, status, result)
}

// pagination reads page and page_size. A missing page_size returns
// everything on one page.
func pagination(r *http.Request) (int, int, error) {
	page, pageSize := 1, 0
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, strconv.ErrSyntax
		}
		page = n
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, strconv.ErrSyntax
		}
		pageSize = min(n, maxPageSize)
	}
	return page, pageSize, nil
}

func (api *API) ListAdminComplaintsHelper(ctx context.Context, criteria complaint.Criteria, page, pageSize int) (AdminComplaintPage, string, string, error) {
	all, err := api.Store.ListComplaints(ctx)
	if err != nil {
		return AdminComplaintPage{}, values.Error, "Failed to fetch complaints", err
	}

	board := complaint.Triage(complaint.Filter(all, criteria))
	result := AdminComplaintPage{Total: len(board), Page: page, PageSize: pageSize}

	if pageSize == 0 {
		result.Complaints = board
		result.PageSize = len(board)
		return result, values.Success, "Complaints fetched successfully", nil
	}

	if page-1 > len(board)/pageSize {
		result.Complaints = []model.Complaint{}
		return result, values.Success, "Complaints fetched successfully", nil
	}
	start := min((page-1)*pageSize, len(board))
	end := min(start+pageSize, len(board))
	result.Complaints = board[start:end]
	return result, values.Success, "Complaints fetched successfully", nil
}

func (api *API) UpdateComplaintStatus(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	ticketID, err := ticketIDParam(r)
	if err != nil {
		return respondWithError(err, "invalid ticket id", values.BadRequestBody, &tc)
	}

	var req model.UpdateStatusRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, model.ErrInvalidStatus.Error(), values.BadRequestBody, &tc)
	}

	c, changed, status, message, err := api.UpdateComplaintStatusHelper(r.Context(), ticketID, req.Status)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	if changed {
		api.publish(r.Context(), events.ComplaintStatusChanged, ticketID, "complaint.status", map[string]any{
			"status": c.Status.String(),
		})
	}
	return respondWithData(message, status, c)
}

// UpdateComplaintStatusHelper writes nothing when the status is already
// the requested one.
func (api *API) UpdateComplaintStatusHelper(ctx context.Context, ticketID uuid.UUID, next model.Status) (model.Complaint, bool, string, string, error) {
	c, err := api.Store.GetComplaint(ctx, ticketID)
	if err != nil {
		status, message := storeError(err, "Failed to fetch complaint")
		return model.Complaint{}, false, status, message, err
	}

	if c.Status == next {
		return c, false, values.Success, "Status unchanged", nil
	}

	if err := api.Store.UpdateComplaintStatus(ctx, ticketID, next); err != nil {
		status, message := storeError(err, "Failed to update status")
		return model.Complaint{}, false, status, message, err
	}
	c.Status = next
	return c, true, values.Success, "Status updated", nil
}
