package httphandler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	userapp "github.com/lllypuk/threads/internal/application/user"
	"github.com/lllypuk/threads/internal/domain/user"
	"github.com/lllypuk/threads/internal/infrastructure/httpserver"
)

// UpdateUserRequest is the body of PUT /users/:external_id.
type UpdateUserRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Name     string `json:"name"     validate:"max=100"`
	Bio      string `json:"bio"      validate:"max=1000"`
	Image    string `json:"image"    validate:"omitempty,url"`
	Path     string `json:"path"`
}

// UserService is implemented by userapp.Service.
type UserService interface {
	UpdateUser(ctx context.Context, cmd userapp.UpdateUserCommand) (*user.User, error)
	FetchUser(ctx context.Context, q userapp.FetchUserQuery) (*user.User, bool, error)
}

// UserHandler handles user profile requests. Users are addressed by the ID
// of the external auth provider.
type UserHandler struct {
	users UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes registers user routes with the router.
func (h *UserHandler) RegisterRoutes(r *httpserver.Router) {
	r.Public().GET("/users/:external_id", h.Get)
	r.Writes().PUT("/users/:external_id", h.Update)
}

// Update handles PUT /api/v1/users/:external_id.
func (h *UserHandler) Update(c echo.Context) error {
	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return httpserver.RespondError(c, err)
	}

	_, err := h.users.UpdateUser(c.Request().Context(), userapp.UpdateUserCommand{
		UserID:   c.Param("external_id"),
		Username: req.Username,
		Name:     req.Name,
		Bio:      req.Bio,
		Image:    req.Image,
		Path:     req.Path,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondNoContent(c)
}

// Get handles GET /api/v1/users/:external_id.
func (h *UserHandler) Get(c echo.Context) error {
	u, found, err := h.users.FetchUser(c.Request().Context(), userapp.FetchUserQuery{
		ExternalID: c.Param("external_id"),
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	if !found {
		return httpserver.RespondErrorWithCode(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	}

	return httpserver.RespondOK(c, ToUserResponse(u))
}
