package rest

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/bwise1/complaint_portal/internal/events"
	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/bwise1/complaint_portal/internal/vote"
	"github.com/bwise1/complaint_portal/util"
	"github.com/bwise1/complaint_portal/util/storage"
	"github.com/bwise1/complaint_portal/util/tracing"
	"github.com/bwise1/complaint_portal/util/values"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (api *API) ComplaintRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.OptionalLogin)
		r.Method(http.MethodGet, "/public", Handler(api.ListPublicComplaints))
		r.Method(http.MethodGet, "/{ticketID}", Handler(api.GetComplaint))
		r.Method(http.MethodGet, "/{ticketID}/votes", Handler(api.GetVotes))
		// anonymous voters get the sign in notice from the caster
		r.Method(http.MethodPost, "/{ticketID}/votes", Handler(api.VoteOnComplaint))
	})

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodGet, "/mine", Handler(api.ListMyComplaints))
		r.With(RateLimit(api.submitLimiter)).Method(http.MethodPost, "/", Handler(api.CreateComplaint))
		r.Method(http.MethodPut, "/{ticketID}", Handler(api.UpdateComplaint))
		r.Method(http.MethodDelete, "/{ticketID}", Handler(api.DeleteComplaint))
		r.Method(http.MethodPost, "/{ticketID}/image", Handler(api.UploadComplaintImage))
	})

	return mux
}

func ticketIDParam(r *http.Request) (uuid.UUID, error) {
	return util.StringToUUID(chi.URLParam(r, "ticketID"))
}

func (api *API) ListPublicComplaints(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	criteria, err := api.criteriaFor(r, util.OptionalUserID(r.Context()))
	if err != nil {
		status, message := criteriaError(err)
		return respondWithError(err, message, status, &tc)
	}

	complaints, status, message, err := api.ListPublicComplaintsHelper(r.Context(), criteria)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return respondWithData(message, status, complaints)
}

func (api *API) ListMyComplaints(_ http.ResponseWriter, r *http.Request) *ServerResponse {
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

	complaints, status, message, err := api.ListMyComplaintsHelper(r.Context(), userID, criteria)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return respondWithData(message, status, complaints)
}

func (api *API) GetComplaint(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	ticketID, err := ticketIDParam(r)
	if err != nil {
		return respondWithError(err, "invalid ticket id", values.BadRequestBody, &tc)
	}

	c, status, message, err := api.GetComplaintHelper(r.Context(), ticketID,
		util.OptionalUserID(r.Context()), util.GetRoleFromContext(r.Context()))
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return respondWithData(message, status, c)
}

func (api *API) CreateComplaint(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	var req model.CreateComplaintRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "invalid complaint", values.BadRequestBody, &tc)
	}

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	created, status, message, err := api.CreateComplaintHelper(r.Context(), userID, req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	api.publish(r.Context(), events.ComplaintCreated, created.TicketID, "complaint.created", map[string]any{
		"category":     created.Category,
		"sub_category": created.SubCategory,
		"is_public":    created.IsPublic,
	})
	return respondWithData(message, status, created)
}

func (api *API) UpdateComplaint(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	ticketID, err := ticketIDParam(r)
	if err != nil {
		return respondWithError(err, "invalid ticket id", values.BadRequestBody, &tc)
	}

	var req model.UpdateComplaintRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "invalid complaint", values.BadRequestBody, &tc)
	}

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	updated, status, message, err := api.UpdateComplaintHelper(r.Context(), ticketID, userID, req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	api.publish(r.Context(), events.ComplaintUpdated, ticketID, "complaint.updated", nil)
	return respondWithData(message, status, updated)
}

func (api *API) DeleteComplaint(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	ticketID, err := ticketIDParam(r)
	if err != nil {
		return respondWithError(err, "invalid ticket id", values.BadRequestBody, &tc)
	}

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	_, status, message, err := api.DeleteComplaintHelper(r.Context(), ticketID, userID)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	api.publish(r.Context(), events.ComplaintDeleted, ticketID, "complaint.deleted", nil)
	return respondWithData(message, status, map[string]any{"ticket_id": ticketID})
}

func (api *API) UploadComplaintImage(w http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	if api.Images == nil {
		return respondWithError(storage.ErrNotConfigured, "image uploads are not available", values.Error, &tc)
	}

	ticketID, err := ticketIDParam(r)
	if err != nil {
		return respondWithError(err, "invalid ticket id", values.BadRequestBody, &tc)
	}

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	maxBytes := api.maxImageBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	file, _, err := r.FormFile("image")
	if err != nil {
		return respondWithError(err, "image file is required", values.BadRequestBody, &tc)
	}
	defer file.Close()

	data, mimeType, err := storage.ReadImage(file, maxBytes)
	if errors.Is(err, storage.ErrImageTooLarge) {
		return respondWithError(err, "Image must be 5MB or smaller", values.BadRequestBody, &tc)
	}
	if errors.Is(err, storage.ErrUnsupportedType) {
		return respondWithError(err, "Image must be a jpeg, png or webp file", values.BadRequestBody, &tc)
	}
	if err != nil {
		return respondWithError(err, "unable to read image", values.BadRequestBody, &tc)
	}

	img, err := api.Images.UploadImage(r.Context(), storage.Reader(data), api.imageFolder())
	if err != nil {
		return respondWithError(err, "failed to upload image", values.Error, &tc)
	}

	previous, err := api.Store.SetComplaintImage(r.Context(), ticketID, userID, img)
	if err != nil {
		// the upload is orphaned when the complaint is missing or not ours
		api.removeImage(r.Context(), img.PublicID)
		status, message := storeError(err, "failed to attach image")
		return respondWithError(err, message, status, &tc)
	}
	if previous.HasImage() && *previous.ImageID != img.PublicID {
		api.removeImage(r.Context(), *previous.ImageID)
	}

	api.publish(r.Context(), events.ComplaintImageAttached, ticketID, "complaint.image", map[string]any{
		"mime_type": mimeType,
	})
	return respondWithData("Image uploaded successfully", values.Success, img)
}

// removeImage is best effort; a failure only leaves an orphaned upload.
func (api *API) removeImage(ctx context.Context, publicID string) {
	if api.Images == nil || publicID == "" {
		return
	}
	if err := api.Images.DeleteImage(context.WithoutCancel(ctx), publicID); err != nil {
		log.Printf("[Images]: unable to delete %s: %v", publicID, err)
	}
}

func (api *API) maxImageBytes() int64 {
	if api.Config != nil && api.Config.MaxImageBytes > 0 {
		return api.Config.MaxImageBytes
	}
	return 5 << 20
}

func (api *API) imageFolder() string {
	if api.Config != nil && api.Config.CloudinaryFolder != "" {
		return api.Config.CloudinaryFolder
	}
	return "complaints"
}

func (api *API) VoteOnComplaint(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	ticketID, err := ticketIDParam(r)
	if err != nil {
		return respondWithError(err, "invalid ticket id", values.BadRequestBody, &tc)
	}

	userID := util.OptionalUserID(r.Context())
	if userID == uuid.Nil {
		outcome, err := api.Votes.Cast(r.Context(), userID, ticketID, model.NoVote)
		return voteResponse(outcome, err, &tc)
	}

	var req model.CastVoteRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, model.ErrInvalidDirection.Error(), values.BadRequestBody, &tc)
	}
	direction, err := model.ParseDirection(req.Direction)
	if err != nil {
		return respondWithError(err, err.Error(), values.BadRequestBody, &tc)
	}

	if _, status, message, err := api.GetComplaintHelper(r.Context(), ticketID, userID, util.GetRoleFromContext(r.Context())); err != nil {
		return respondWithError(err, message, status, &tc)
	}

	outcome, err := api.Votes.Cast(r.Context(), userID, ticketID, direction)
	return voteResponse(outcome, err, &tc)
}

func voteResponse(outcome vote.Outcome, err error, tc *tracing.Context) *ServerResponse {
	if err == nil {
		return respondWithData(outcome.Notice.Message, values.Success, outcome)
	}

	status := values.Error
	switch {
	case errors.Is(err, vote.ErrAuthRequired):
		status = values.NotAuthorised
	case errors.Is(err, vote.ErrVoteInFlight):
		status = values.Conflict
	case errors.Is(err, model.ErrInvalidDirection):
		status = values.BadRequestBody
	case errors.Is(err, ErrComplaintNotFound):
		status = values.NotFound
	}

	resp := respondWithError(err, outcome.Notice.Message, status, tc)
	resp.Data = outcome
	return resp
}

func (api *API) GetVotes(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	ticketID, err := ticketIDParam(r)
	if err != nil {
		return respondWithError(err, "invalid ticket id", values.BadRequestBody, &tc)
	}

	c, status, message, err := api.GetComplaintHelper(r.Context(), ticketID,
		util.OptionalUserID(r.Context()), util.GetRoleFromContext(r.Context()))
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return respondWithData("Votes fetched successfully", values.Success, map[string]any{
		"net":       vote.Tally(c.Votes),
		"direction": vote.DirectionOf(c.Votes, util.OptionalUserID(r.Context())),
		"votes":     c.Votes,
	})
}
