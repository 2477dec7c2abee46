package thread

import (
	"fmt"

	"github.com/lllypuk/threads/internal/application/appcore"
	"github.com/lllypuk/threads/internal/domain/errs"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// opError is embedded by the operation errors. It carries the cause and
// maps it to an HTTP response through appcore.ClassifyError.
type opError struct {
	op  string
	Err error
}

func (e *opError) Error() string { return fmt.Sprintf("%s: %v", e.op, e.Err) }
func (e *opError) Unwrap() error { return e.Err }

// HTTPStatus implements httpserver.HTTPError.
func (e *opError) HTTPStatus() int {
	status, _ := appcore.ClassifyError(e.Err)
	return status
}

// HTTPCode implements httpserver.HTTPError.
func (e *opError) HTTPCode() string {
	_, code := appcore.ClassifyError(e.Err)
	return code
}

// HTTPMessage implements httpserver.HTTPError.
func (e *opError) HTTPMessage() string { return e.Error() }

// CreateThreadError is returned by Service.CreateThread.
type CreateThreadError struct{ opError }

func newCreateThreadError(err error) *CreateThreadError {
	return &CreateThreadError{opError{op: "error creating thread", Err: err}}
}

// FetchPostsError is returned by Service.FetchPosts.
type FetchPostsError struct{ opError }

func newFetchPostsError(err error) *FetchPostsError {
	return &FetchPostsError{opError{op: "error fetching posts", Err: err}}
}

// FetchThreadError is returned by Service.FetchThreadByID.
type FetchThreadError struct{ opError }

func newFetchThreadError(err error) *FetchThreadError {
	return &FetchThreadError{opError{op: "error fetching thread", Err: err}}
}

// AddCommentError is returned by Service.AddComment.
type AddCommentError struct{ opError }

func newAddCommentError(err error) *AddCommentError {
	return &AddCommentError{opError{op: "error adding comment to thread", Err: err}}
}

// ThreadNotFoundError reports a missing parent thread. It matches errs.ErrNotFound.
type ThreadNotFoundError struct {
	ThreadID uuid.UUID
}

func (e *ThreadNotFoundError) Error() string {
	return fmt.Sprintf("thread %s not found", e.ThreadID)
}

// Is makes errors.Is(err, errs.ErrNotFound) hold.
func (e *ThreadNotFoundError) Is(target error) bool { return target == errs.ErrNotFound }
