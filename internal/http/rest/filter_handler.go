package rest

import (
	"net/http"

	"github.com/bwise1/complaint_portal/internal/complaint"
	"github.com/bwise1/complaint_portal/util"
	"github.com/bwise1/complaint_portal/util/values"
	"github.com/go-chi/chi/v5"
)

// SavedFilter is a user's criteria together with the query string that
// reproduces it on the listing endpoints.
type SavedFilter struct {
	Criteria complaint.Criteria `json:"criteria"`
	Query    string             `json:"query"`
}

func (api *API) FilterRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodGet, "/me", Handler(api.GetMyFilter))
		r.Method(http.MethodPut, "/me", Handler(api.SetMyFilter))
		r.Method(http.MethodDelete, "/me", Handler(api.ResetMyFilter))
	})

	return mux
}

func savedFilter(c complaint.Criteria) (SavedFilter, error) {
	encoded, err := c.Encode()
	if err != nil {
		return SavedFilter{}, err
	}
	return SavedFilter{Criteria: c, Query: encoded}, nil
}

func (api *API) GetMyFilter(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	resp, err := savedFilter(api.Filters.Get(userID))
	if err != nil {
		return respondWithError(err, "unable to encode filter", values.Error, &tc)
	}
	return respondWithData("Filter fetched successfully", values.Success, resp)
}

func (api *API) SetMyFilter(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	var q complaint.Query
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &q); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	criteria, err := api.resolveQuery(r.Context(), q)
	if err != nil {
		status, message := criteriaError(err)
		return respondWithError(err, message, status, &tc)
	}

	resp, err := savedFilter(api.Filters.Set(userID, criteria))
	if err != nil {
		return respondWithError(err, "unable to encode filter", values.Error, &tc)
	}
	return respondWithData("Filter saved", values.Success, resp)
}

func (api *API) ResetMyFilter(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	api.Filters.Reset(userID)
	return respondWithData("Filter reset", values.Success, SavedFilter{})
}
