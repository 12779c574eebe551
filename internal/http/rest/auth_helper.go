package rest

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bwise1/complaint_portal/internal/http/google"
	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/bwise1/complaint_portal/util"
	"github.com/bwise1/complaint_portal/util/values"
	"github.com/golang-jwt/jwt"
)

const (
	providerEmail  = "email"
	providerGoogle = "google"
)

var errInvalidCredentials = errors.New("invalid email or password")

type TokenClaims struct {
	UserID string
	Type   string
	Role   model.Role
	Exp    int64
}

func (api *API) createToken(user model.User) (string, time.Time, error) {
	expTime, err := time.ParseDuration(api.Config.JwtExpires)
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := time.Now().Add(expTime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"exp":  expiresAt.Unix(),
		"iat":  time.Now().Unix(),
		"typ":  "access",
		"role": string(user.Role),
	})

	tokenString, err := token.SignedString([]byte(api.Config.JwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func (api *API) loginResponse(user model.User) (model.LoginResponse, error) {
	token, _, err := api.createToken(user)
	if err != nil {
		return model.LoginResponse{}, err
	}
	return model.LoginResponse{
		User: &model.LoginUserResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			AvatarURL:   user.AvatarURL,
			Role:        user.Role,
		},
		Token: token,
	}, nil
}

func (api *API) roleFor(email string) model.Role {
	if api.Config != nil && api.Config.IsAdminEmail(email) {
		return model.RoleAdmin
	}
	return model.RoleStudent
}

func (api *API) SignUpHelper(ctx context.Context, req model.SignUpRequest) (model.LoginResponse, string, string, error) {
	hash, err := util.HashPassword(req.Password)
	if err != nil {
		return model.LoginResponse{}, values.Error, "unable to create account", err
	}

	user, err := api.Store.CreateUser(ctx, model.User{
		Email:        req.Email,
		DisplayName:  util.StringPtr(req.DisplayName),
		PasswordHash: &hash,
		AuthProvider: providerEmail,
		Role:         api.roleFor(req.Email),
	})
	if errors.Is(err, ErrEmailTaken) {
		return model.LoginResponse{}, values.Conflict, "an account with this email already exists", err
	}
	if err != nil {
		return model.LoginResponse{}, values.Error, "unable to create account", err
	}

	resp, err := api.loginResponse(user)
	if err != nil {
		return model.LoginResponse{}, values.Error, "failed to create token", err
	}
	return resp, values.Created, "Account created", nil
}

func (api *API) SignInHelper(ctx context.Context, req model.SignInRequest) (model.LoginResponse, string, string, error) {
	user, err := api.Store.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		return model.LoginResponse{}, values.NotAuthorised, errInvalidCredentials.Error(), err
	}
	if err != nil {
		return model.LoginResponse{}, values.Error, "unable to sign in", err
	}

	if user.PasswordHash == nil || !util.CheckPassword(*user.PasswordHash, req.Password) {
		return model.LoginResponse{}, values.NotAuthorised, errInvalidCredentials.Error(), errInvalidCredentials
	}

	resp, err := api.loginResponse(user)
	if err != nil {
		return model.LoginResponse{}, values.Error, "failed to create token", err
	}
	return resp, values.Success, "Login successful", nil
}

// GoogleLoginHelper signs a Google user in, creating the account the
// first time the address is seen.
func (api *API) GoogleLoginHelper(ctx context.Context, accessToken string) (model.LoginResponse, string, string, error) {
	if api.Google == nil {
		return model.LoginResponse{}, values.Error, "google sign in is not configured", errors.New("no google client")
	}

	info, err := api.Google.UserInfo(ctx, accessToken)
	if errors.Is(err, google.ErrEmailNotVerified) {
		return model.LoginResponse{}, values.NotAuthorised, "google account email is not verified", err
	}
	if err != nil {
		return model.LoginResponse{}, values.NotAuthorised, "failed to get user info", err
	}

	email := util.NormalizeEmail(info.Email)
	user, err := api.Store.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		log.Printf("[Auth]: creating account for google user %s", info.ID)
		user, err = api.Store.CreateUser(ctx, model.User{
			Email:        email,
			DisplayName:  util.StringPtr(info.Name),
			AvatarURL:    util.StringPtr(info.AvatarURL),
			AuthProvider: providerGoogle,
			Role:         api.roleFor(email),
		})
	}
	if err != nil {
		return model.LoginResponse{}, values.Error, "unable to sign in with google", err
	}

	resp, err := api.loginResponse(user)
	if err != nil {
		return model.LoginResponse{}, values.Error, "failed to create token", err
	}
	return resp, values.Success, "Login successful", nil
}
