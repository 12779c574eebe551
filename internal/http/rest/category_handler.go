package rest

import (
	"net/http"
	"strconv"

	"github.com/bwise1/complaint_portal/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) CategoryRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodGet, "/", Handler(api.ListCategories))
	mux.Method(http.MethodGet, "/{categoryID}/sub-categories", Handler(api.ListCategorySubCategories))
	return mux
}

func (api *API) SubCategoryRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodGet, "/", Handler(api.ListSubCategories))
	return mux
}

func (api *API) ListCategories(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	categories, err := api.Store.ListCategories(r.Context())
	if err != nil {
		return respondWithError(err, "Failed to fetch categories", values.Error, &tc)
	}
	return respondWithData("Categories fetched successfully", values.Success, categories)
}

func (api *API) ListCategorySubCategories(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	categoryID, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil || categoryID <= 0 {
		return respondWithError(err, "invalid category id", values.BadRequestBody, &tc)
	}

	if _, err := api.Store.GetCategory(r.Context(), categoryID); err != nil {
		status, message := storeError(err, "Failed to fetch category")
		return respondWithError(err, message, status, &tc)
	}

	subs, err := api.Store.ListSubCategories(r.Context(), categoryID)
	if err != nil {
		return respondWithError(err, "Failed to fetch sub categories", values.Error, &tc)
	}
	return respondWithData("Sub categories fetched successfully", values.Success, subs)
}

func (api *API) ListSubCategories(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	subs, err := api.Store.ListSubCategories(r.Context(), 0)
	if err != nil {
		return respondWithError(err, "Failed to fetch sub categories", values.Error, &tc)
	}
	return respondWithData("Sub categories fetched successfully", values.Success, subs)
}
