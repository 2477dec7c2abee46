package httphandler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	threadapp "github.com/lllypuk/threads/internal/application/thread"
	"github.com/lllypuk/threads/internal/domain/thread"
	"github.com/lllypuk/threads/internal/domain/uuid"
	"github.com/lllypuk/threads/internal/infrastructure/httpserver"
)

// CreateThreadRequest is the body of POST /threads.
type CreateThreadRequest struct {
	Text        string `json:"text"         validate:"required"`
	AuthorID    string `json:"author_id"    validate:"required,uuid"`
	CommunityID string `json:"community_id" validate:"omitempty,uuid"`
	Path        string `json:"path"`
}

// AddCommentRequest is the body of POST /threads/:id/comments.
type AddCommentRequest struct {
	Text     string `json:"text"      validate:"required"`
	AuthorID string `json:"author_id" validate:"required,uuid"`
	Path     string `json:"path"`
}

// ThreadService is implemented by threadapp.Service.
type ThreadService interface {
	CreateThread(ctx context.Context, cmd threadapp.CreateThreadCommand) (*thread.Thread, error)
	AddComment(ctx context.Context, cmd threadapp.AddCommentCommand) (*thread.Thread, error)
	FetchPosts(ctx context.Context, q threadapp.FetchPostsQuery) (threadapp.FetchPostsResult, error)
	FetchThreadByID(ctx context.Context, q threadapp.FetchThreadQuery) (threadapp.FetchThreadResult, error)
}

// ThreadHandler handles thread HTTP requests.
type ThreadHandler struct {
	threads ThreadService
}

// NewThreadHandler creates a new ThreadHandler.
func NewThreadHandler(threads ThreadService) *ThreadHandler {
	return &ThreadHandler{threads: threads}
}

// RegisterRoutes registers thread routes with the router.
func (h *ThreadHandler) RegisterRoutes(r *httpserver.Router) {
	r.Public().GET("/threads", h.List)
	r.Public().GET("/threads/:id", h.Get)

	r.Writes().POST("/threads", h.Create)
	r.Writes().POST("/threads/:id/comments", h.AddComment)
}

// Create handles POST /api/v1/threads.
func (h *ThreadHandler) Create(c echo.Context) error {
	var req CreateThreadRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return httpserver.RespondError(c, err)
	}

	created, err := h.threads.CreateThread(c.Request().Context(), threadapp.CreateThreadCommand{
		Text:        req.Text,
		AuthorID:    uuid.UUID(req.AuthorID),
		CommunityID: uuid.UUID(req.CommunityID),
		Path:        req.Path,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondCreated(c, ToThreadResponse(created))
}

// List handles GET /api/v1/threads?page=&size=.
func (h *ThreadHandler) List(c echo.Context) error {
	var q threadapp.FetchPostsQuery
	err := echo.QueryParamsBinder(c).
		Int("page", &q.PageNumber).
		Int("size", &q.PageSize).
		BindError()
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "page and size must be integers")
	}

	result, err := h.threads.FetchPosts(c.Request().Context(), q)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToFeedResponse(result.Posts, result.IsNext))
}

// Get handles GET /api/v1/threads/:id?depth=.
func (h *ThreadHandler) Get(c echo.Context) error {
	threadID, err := uuid.ParseUUID(c.Param("id"))
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_THREAD_ID", "invalid thread ID format")
	}

	q := threadapp.FetchThreadQuery{ThreadID: threadID}
	if c.QueryParam("depth") != "" {
		var depth int
		if bindErr := echo.QueryParamsBinder(c).Int("depth", &depth).BindError(); bindErr != nil {
			return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "depth must be an integer")
		}
		q.Depth = &depth
	}

	result, err := h.threads.FetchThreadByID(c.Request().Context(), q)
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	if !result.Found {
		return httpserver.RespondErrorWithCode(c, http.StatusNotFound, "THREAD_NOT_FOUND", "thread not found")
	}

	return httpserver.RespondOK(c, ToNodeResponse(result.Thread))
}

// AddComment handles POST /api/v1/threads/:id/comments.
func (h *ThreadHandler) AddComment(c echo.Context) error {
	threadID, err := uuid.ParseUUID(c.Param("id"))
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_THREAD_ID", "invalid thread ID format")
	}

	var req AddCommentRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}
	if valErr := c.Validate(&req); valErr != nil {
		return httpserver.RespondError(c, valErr)
	}

	reply, err := h.threads.AddComment(c.Request().Context(), threadapp.AddCommentCommand{
		ThreadID: threadID,
		Text:     req.Text,
		AuthorID: uuid.UUID(req.AuthorID),
		Path:     req.Path,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondCreated(c, ToThreadResponse(reply))
}
