package rest

import (
	"net/http"

	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/bwise1/complaint_portal/util"
	"github.com/bwise1/complaint_portal/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) AuthRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodPost, "/sign-up", Handler(api.SignUp))
	mux.With(RateLimit(api.signInLimiter)).Method(http.MethodPost, "/sign-in", Handler(api.SignIn))
	mux.Method(http.MethodPost, "/google/login", Handler(api.LoginWithGoogle))
	return mux
}

func (api *API) SignUp(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	var req model.SignUpRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	req.Email = util.NormalizeEmail(req.Email)
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "invalid sign up details", values.BadRequestBody, &tc)
	}

	resp, status, message, err := api.SignUpHelper(r.Context(), req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return respondWithData(message, status, resp)
}

func (api *API) SignIn(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	var req model.SignInRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	req.Email = util.NormalizeEmail(req.Email)
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "email and password are required", values.BadRequestBody, &tc)
	}

	resp, status, message, err := api.SignInHelper(r.Context(), req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return respondWithData(message, status, resp)
}

func (api *API) LoginWithGoogle(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	var req model.GoogleLoginRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "access_token is required", values.BadRequestBody, &tc)
	}

	resp, status, message, err := api.GoogleLoginHelper(r.Context(), req.AccessToken)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return respondWithData(message, status, resp)
}
