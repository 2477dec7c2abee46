package httphandler_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/threads/internal/domain/errs"
	httphandler "github.com/lllypuk/threads/internal/handler/http"
)

func TestUserHandler_Update(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPut, "/api/v1/users/auth0-42",
		`{"username":"  Alice ","name":"Alice","bio":"hi","image":"https://img.example.com/a.png","path":"/profile/edit"}`)

	requireStatus(t, rec, http.StatusNoContent)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, []string{"/profile/edit"}, h.revalidator.Paths())

	rec = h.do(t, http.MethodGet, "/api/v1/users/auth0-42", "")
	requireStatus(t, rec, http.StatusOK)

	got := decode[httphandler.UserResponse](t, rec).Data
	assert.Equal(t, "auth0-42", got.ExternalID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "Alice", got.Name)
	assert.True(t, got.Onboarded)
	assert.Empty(t, got.Threads)
	assert.NotEmpty(t, got.ID)
}

func TestUserHandler_Update_KeepsIdentity(t *testing.T) {
	h := newHarness(t)

	requireStatus(t, h.do(t, http.MethodPut, "/api/v1/users/ext-1", `{"username":"first","name":"One"}`), http.StatusNoContent)
	first := decode[httphandler.UserResponse](t, h.do(t, http.MethodGet, "/api/v1/users/ext-1", "")).Data

	requireStatus(t, h.do(t, http.MethodPut, "/api/v1/users/ext-1",
		`{"username":"second","name":"Two","path":"/elsewhere"}`), http.StatusNoContent)
	second := decode[httphandler.UserResponse](t, h.do(t, http.MethodGet, "/api/v1/users/ext-1", "")).Data

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "second", second.Username)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Empty(t, h.revalidator.Paths(), "only the profile edit page is revalidated")
}

func TestUserHandler_Update_BadRequests(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed json", `{"username":`, "INVALID_REQUEST"},
		{"missing username", `{"name":"A"}`, "VALIDATION_ERROR"},
		{"bio too long", `{"username":"a","bio":"` + strings.Repeat("x", 1001) + `"}`, "VALIDATION_ERROR"},
		{"bad image", `{"username":"a","image":"not a url"}`, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, http.MethodPut, "/api/v1/users/ext-1", tt.body)

			requireStatus(t, rec, http.StatusBadRequest)
			assert.Equal(t, tt.code, decode[any](t, rec).Error.Code)
		})
	}

	assert.Zero(t, h.users.CallCount("UpsertProfile"))
}

func TestUserHandler_Update_Conflict(t *testing.T) {
	h := newHarness(t)
	h.users.FailOn("UpsertProfile", errs.ErrAlreadyExists)

	rec := h.do(t, http.MethodPut, "/api/v1/users/ext-1", `{"username":"taken"}`)

	requireStatus(t, rec, http.StatusConflict)
	assert.Equal(t, "CONFLICT", decode[any](t, rec).Error.Code)
}

func TestUserHandler_Get_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodGet, "/api/v1/users/nobody", "")

		requireStatus(t, rec, http.StatusNotFound)
		assert.Equal(t, "USER_NOT_FOUND", decode[any](t, rec).Error.Code)
	})

	t.Run("store unavailable", func(t *testing.T) {
		h := newHarness(t)
		h.store.SetConnectError(errUnavailable)

		rec := h.do(t, http.MethodGet, "/api/v1/users/ext-1", "")

		requireStatus(t, rec, http.StatusServiceUnavailable)
		env := decode[any](t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, "SERVICE_UNAVAILABLE", env.Error.Code)
	})
}
