package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/mindcare/internal/accounts"
)

func TestSignUpLoginLogout(t *testing.T) {
	srv := newTestServer(t)

	created := srv.signUp(t, "tab-1", "ann@example.com")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ann@example.com", created.Email)

	rec := srv.do(t, http.MethodGet, "/me", "tab-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = srv.do(t, http.MethodPost, "/auth/logout", "tab-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = srv.do(t, http.MethodGet, "/me", "tab-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/auth/login", "tab-2", accounts.LoginRequest{Email: "ann@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeBody[UserResponse](t, rec).ID)
}

func TestSignUpErrors(t *testing.T) {
	srv := newTestServer(t)
	srv.signUp(t, "tab-1", "ann@example.com")

	rec := srv.do(t, http.MethodPost, "/auth/signup", "tab-2", accounts.SignUpRequest{
		Name: "Bob", Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodPost, "/auth/signup", "tab-2", accounts.SignUpRequest{Email: "nope", Password: "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[map[string][]string](t, rec)
	assert.GreaterOrEqual(t, len(body["errors"]), 3)

	rec = srv.do(t, http.MethodPost, "/auth/signup", "tab-2", map[string]string{"unexpected": "field"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := newTestServer(t)
	srv.signUp(t, "tab-1", "ann@example.com")

	rec := srv.do(t, http.MethodPost, "/auth/login", "tab-2", accounts.LoginRequest{Email: "ann@example.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionHeaderRequired(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
