package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwise1/complaint_portal/internal/http/google"
	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/bwise1/complaint_portal/util"
	"github.com/bwise1/complaint_portal/util/values"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGoogle struct {
	info google.UserInfo
	err  error
}

func (f fakeGoogle) UserInfo(context.Context, string) (google.UserInfo, error) {
	return f.info, f.err
}

func TestSignUpAndSignIn(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodPost, "/auth/sign-up", "",
		`{"email":" Student@Uni.test ","password":"correct horse","display_name":"Sam"}`)
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)

	var created model.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "student@uni.test", created.User.Email)
	assert.Equal(t, model.RoleStudent, created.User.Role)
	assert.NotEmpty(t, created.Token)

	rec, _ = ts.do(t, http.MethodPost, "/auth/sign-up", "",
		`{"email":"student@uni.test","password":"another one"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = ts.do(t, http.MethodPost, "/auth/sign-in", "",
		`{"email":"student@uni.test","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var signedIn model.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &signedIn))
	assert.Equal(t, created.User.ID, signedIn.User.ID)

	rec, env = ts.do(t, http.MethodPost, "/auth/sign-in", "",
		`{"email":"student@uni.test","password":"wrong horse"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errInvalidCredentials.Error(), env.Message)

	rec, _ = ts.do(t, http.MethodPost, "/auth/sign-in", "",
		`{"email":"nobody@uni.test","password":"whatever"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignUp_Validation(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, body := range []string{
		`{"email":"not-an-email","password":"long enough"}`,
		`{"email":"a@uni.test","password":"short"}`,
		`{"email":"a@uni.test"}`,
	} {
		rec, _ := ts.do(t, http.MethodPost, "/auth/sign-up", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestSignUp_AdminEmail(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodPost, "/auth/sign-up", "",
		`{"email":"dean@uni.test","password":"correct horse"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, model.RoleAdmin, resp.User.Role)

	rec, _ = ts.do(t, http.MethodGet, "/admin/complaints", resp.Token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginWithGoogle(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.api.Google = fakeGoogle{info: google.UserInfo{ID: "g-1", Email: "Robin@Uni.test", Name: "Robin"}}

	rec, env := ts.do(t, http.MethodPost, "/auth/google/login", "", `{"access_token":"ya29.token"}`)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)

	var first model.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &first))
	assert.Equal(t, "robin@uni.test", first.User.Email)
	require.NotNil(t, first.User.DisplayName)
	assert.Equal(t, "Robin", *first.User.DisplayName)

	rec, env = ts.do(t, http.MethodPost, "/auth/google/login", "", `{"access_token":"ya29.token"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var second model.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.Equal(t, first.User.ID, second.User.ID)

	ts.api.Google = fakeGoogle{err: google.ErrEmailNotVerified}
	rec, _ = ts.do(t, http.MethodPost, "/auth/google/login", "", `{"access_token":"ya29.token"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ts.api.Google = fakeGoogle{err: errors.New("boom")}
	rec, _ = ts.do(t, http.MethodPost, "/auth/google/login", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestRequireLogin_Tokens(t *testing.T) {
	ts := newTestServer(t, nil)
	user, valid := ts.addUser(t, "student@uni.test", model.RoleStudent)
	sub := user.ID.String()
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		token  string
		code   int
		status string
	}{
		{"valid", valid, http.StatusOK, values.Success},
		{"missing", "", http.StatusUnauthorized, values.NotAuthorised},
		{"expired", signed(t, "test-secret", jwt.MapClaims{"sub": sub, "typ": "access", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized, values.TokenExpired},
		{"wrong secret", signed(t, "other-secret", jwt.MapClaims{"sub": sub, "typ": "access", "exp": future}), http.StatusUnauthorized, values.NotAuthorised},
		{"refresh token", signed(t, "test-secret", jwt.MapClaims{"sub": sub, "typ": "refresh", "exp": future}), http.StatusUnauthorized, values.NotAuthorised},
		{"unknown user", signed(t, "test-secret", jwt.MapClaims{"sub": "6f1c4b8e-0000-4000-8000-000000000000", "typ": "access", "exp": future}), http.StatusUnauthorized, values.NotAuthorised},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := ts.do(t, http.MethodGet, "/filters/me", tt.token, "")
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.status, env.Status)
		})
	}
}

func TestRequireLogin_RoleFromStore(t *testing.T) {
	ts := newTestServer(t, nil)
	user, token := ts.addUser(t, "student@uni.test", model.RoleStudent)

	rec, _ := ts.do(t, http.MethodGet, "/admin/complaints", token, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	require.NoError(t, ts.store.SetUserRole(context.Background(), user.Email, model.RoleAdmin))

	rec, _ = ts.do(t, http.MethodGet, "/admin/complaints", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestTracing(t *testing.T) {
	var seen string
	h := RequestTracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc := tracingFrom(r)
		seen = tc.RequestSource
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(values.HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(values.HeaderRequestID))
	assert.Equal(t, "web", seen)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(values.HeaderRequestID))
}

func TestOptionalLogin_IgnoresBadToken(t *testing.T) {
	ts := newTestServer(t, nil)

	var userSeen bool
	h := ts.api.OptionalLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := util.GetUserIDFromContext(r.Context())
		userSeen = err == nil
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, userSeen)
}
