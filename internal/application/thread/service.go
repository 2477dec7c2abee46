// Package thread implements posting, replying to and reading threads.
package thread

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lllypuk/threads/internal/application/appcore"
	"github.com/lllypuk/threads/internal/domain/errs"
	"github.com/lllypuk/threads/internal/domain/thread"
	"github.com/lllypuk/threads/internal/domain/user"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// Operation names reported to the OperationObserver.
const (
	OpCreateThread = "create_thread"
	OpFetchPosts   = "fetch_posts"
	OpFetchThread  = "fetch_thread"
	OpAddComment   = "add_comment"
)

// Settings tune paging, expansion depth and reply linking.
type Settings struct {
	DefaultPageSize int
	MaxPageSize     int
	Depth           int
	MaxDepth        int
	MaxTextLength   int
	// LinkRepliesToAuthor also records replies in the author's thread list.
	LinkRepliesToAuthor bool
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		Depth:           thread.DefaultDepth,
		MaxDepth:        10,
		MaxTextLength:   5000,
	}
}

// Service implements the thread operations.
type Service struct {
	store       appcore.Store
	threads     ThreadRepository
	users       UserRepository
	revalidator appcore.Revalidator
	observer    appcore.OperationObserver
	settings    Settings
	logger      *slog.Logger
}

// Option configures Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithObserver sets the operation observer (metrics).
func WithObserver(observer appcore.OperationObserver) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// WithSettings overrides DefaultSettings.
func WithSettings(settings Settings) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

// NewService creates a thread Service.
func NewService(
	store appcore.Store,
	threads ThreadRepository,
	users UserRepository,
	revalidator appcore.Revalidator,
	opts ...Option,
) *Service {
	s := &Service{
		store:       store,
		threads:     threads,
		users:       users,
		revalidator: revalidator,
		observer:    appcore.NopObserver{},
		settings:    DefaultSettings(),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateThread posts a top-level thread and links it to its author.
// The community reference is dropped.
func (s *Service) CreateThread(ctx context.Context, cmd CreateThreadCommand) (_ *thread.Thread, err error) {
	defer s.observe(OpCreateThread, time.Now(), &err)

	text, err := s.cleanText(cmd.Text)
	if err != nil {
		return nil, newCreateThreadError(err)
	}
	if err = appcore.ValidateUUID("authorID", cmd.AuthorID); err != nil {
		return nil, newCreateThreadError(err)
	}

	if err = s.store.EnsureConnected(ctx); err != nil {
		return nil, newCreateThreadError(err)
	}

	if err = s.requireAuthor(ctx, cmd.AuthorID); err != nil {
		return nil, newCreateThreadError(err)
	}

	created, err := thread.NewThread(text, cmd.AuthorID)
	if err != nil {
		return nil, newCreateThreadError(err)
	}

	err = s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		if insertErr := s.threads.Insert(ctx, created); insertErr != nil {
			return fmt.Errorf("failed to insert thread: %w", insertErr)
		}
		if linkErr := s.users.AppendThread(ctx, cmd.AuthorID, created.ID()); linkErr != nil {
			return fmt.Errorf("failed to link thread to author: %w", linkErr)
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create thread",
			slog.String("author_id", cmd.AuthorID.String()),
			slog.String("request_id", appcore.GetRequestID(ctx)),
			slog.String("error", err.Error()),
		)
		return nil, newCreateThreadError(err)
	}

	s.revalidate(ctx, cmd.Path)

	s.logger.InfoContext(ctx, "thread created",
		slog.String("thread_id", created.ID().String()),
		slog.String("author_id", cmd.AuthorID.String()),
	)

	return created, nil
}

// AddComment creates a reply to an existing thread and links it to the parent.
func (s *Service) AddComment(ctx context.Context, cmd AddCommentCommand) (_ *thread.Thread, err error) {
	defer s.observe(OpAddComment, time.Now(), &err)

	text, err := s.cleanText(cmd.Text)
	if err != nil {
		return nil, newAddCommentError(err)
	}
	if err = appcore.ValidateUUID("threadID", cmd.ThreadID); err != nil {
		return nil, newAddCommentError(err)
	}
	if err = appcore.ValidateUUID("authorID", cmd.AuthorID); err != nil {
		return nil, newAddCommentError(err)
	}

	if err = s.store.EnsureConnected(ctx); err != nil {
		return nil, newAddCommentError(err)
	}

	parent, err := s.threads.FindByID(ctx, cmd.ThreadID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, newAddCommentError(&ThreadNotFoundError{ThreadID: cmd.ThreadID})
		}
		return nil, newAddCommentError(err)
	}

	if err = s.requireAuthor(ctx, cmd.AuthorID); err != nil {
		return nil, newAddCommentError(err)
	}

	reply, err := thread.NewReply(text, cmd.AuthorID, parent.ID())
	if err != nil {
		return nil, newAddCommentError(err)
	}

	err = s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		if insertErr := s.threads.Insert(ctx, reply); insertErr != nil {
			return fmt.Errorf("failed to insert reply: %w", insertErr)
		}
		if linkErr := s.threads.AppendChild(ctx, parent.ID(), reply.ID()); linkErr != nil {
			if errors.Is(linkErr, errs.ErrNotFound) {
				return &ThreadNotFoundError{ThreadID: parent.ID()}
			}
			return fmt.Errorf("failed to link reply to thread: %w", linkErr)
		}
		if s.settings.LinkRepliesToAuthor {
			if linkErr := s.users.AppendThread(ctx, cmd.AuthorID, reply.ID()); linkErr != nil {
				return fmt.Errorf("failed to link reply to author: %w", linkErr)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to add comment",
			slog.String("thread_id", cmd.ThreadID.String()),
			slog.String("author_id", cmd.AuthorID.String()),
			slog.String("request_id", appcore.GetRequestID(ctx)),
			slog.String("error", err.Error()),
		)
		return nil, newAddCommentError(err)
	}

	s.revalidate(ctx, cmd.Path)

	s.logger.InfoContext(ctx, "comment added",
		slog.String("thread_id", parent.ID().String()),
		slog.String("reply_id", reply.ID().String()),
	)

	return reply, nil
}

// cleanText trims surrounding whitespace and validates the text. The body is
// stored as submitted; markup is neutralized when it is rendered.
func (s *Service) cleanText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if err := appcore.ValidateRequired("text", text); err != nil {
		return "", err
	}
	if s.settings.MaxTextLength > 0 {
		if err := appcore.ValidateMaxLength("text", text, s.settings.MaxTextLength); err != nil {
			return "", err
		}
	}
	return text, nil
}

func (s *Service) requireAuthor(ctx context.Context, authorID uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, authorID, []user.Field{user.FieldID}); err != nil {
		return fmt.Errorf("author %s: %w", authorID, err)
	}
	return nil
}

func (s *Service) revalidate(ctx context.Context, path string) {
	if path == "" {
		return
	}
	s.revalidator.Revalidate(ctx, path)
}

func (s *Service) observe(op string, start time.Time, err *error) {
	s.observer.ObserveOperation(op, time.Since(start), *err)
}
