package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lllypuk/threads/internal/domain/thread"
	"github.com/lllypuk/threads/internal/domain/user"
	"github.com/lllypuk/threads/internal/domain/uuid"
	httphandler "github.com/lllypuk/threads/internal/handler/http"
	"github.com/lllypuk/threads/internal/infrastructure/httpserver"
	"github.com/lllypuk/threads/internal/infrastructure/mongodb"
	"github.com/lllypuk/threads/tests/mocks"
	"github.com/lllypuk/threads/tests/testutil"
)

var errUnavailable = &mongodb.ConnectionError{Op: "connect", Err: errors.New("connection refused")}

type envelope[T any] struct {
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Error   *httpserver.Error `json:"error"`
}

type harness struct {
	server      *httpserver.Server
	store       *mocks.MockStore
	threads     *mocks.MockThreadRepository
	users       *mocks.MockUserRepository
	revalidator *mocks.MockRevalidator
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	suite := testutil.NewTestSuite(t)
	h := &harness{
		store:       suite.Store,
		threads:     suite.ThreadRepo,
		users:       suite.UserRepo,
		revalidator: suite.Revalidator,
	}

	h.server = httpserver.NewServer(httpserver.DefaultServerConfig(), nil)
	h.server.SetValidator(httphandler.NewRequestValidator())

	router := httpserver.NewRouter(h.server.Echo(), httpserver.DefaultRouterConfig())
	router.RegisterAll(
		httphandler.NewThreadHandler(suite.Threads),
		httphandler.NewUserHandler(suite.Users),
	)
	return h
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.server.Echo().ServeHTTP(rec, req)
	return rec
}

func (h *harness) addUser(t *testing.T, username string) *user.User {
	t.Helper()
	u, err := user.NewUser(user.Profile{
		ExternalID: "ext-" + username,
		Username:   username,
		Name:       "Name " + username,
		Image:      "https://img.example.com/" + username + ".png",
	})
	require.NoError(t, err)
	h.users.Add(u)
	return u
}

func (h *harness) seedThread(t *testing.T, author *user.User, text string, createdAt time.Time) *thread.Thread {
	t.Helper()
	th := thread.Reconstruct(uuid.NewUUID(), text, author.ID(), "", "", nil, createdAt)
	require.NoError(t, h.threads.Insert(context.Background(), th))
	return th
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}
