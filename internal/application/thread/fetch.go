package thread

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lllypuk/threads/internal/application/appcore"
	"github.com/lllypuk/threads/internal/domain/errs"
	"github.com/lllypuk/threads/internal/domain/thread"
	"github.com/lllypuk/threads/internal/domain/user"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// feedReplyDepth is how many reply levels the feed shows under each post.
const feedReplyDepth = 1

// FetchPosts returns a page of top-level threads, newest first. Each post
// carries its full author and its direct replies with a reduced author.
func (s *Service) FetchPosts(ctx context.Context, q FetchPostsQuery) (_ FetchPostsResult, err error) {
	defer s.observe(OpFetchPosts, time.Now(), &err)

	page, size, err := s.normalizePage(q)
	if err != nil {
		return FetchPostsResult{}, newFetchPostsError(err)
	}
	skip := (page - 1) * size

	if err = s.store.EnsureConnected(ctx); err != nil {
		return FetchPostsResult{}, newFetchPostsError(err)
	}

	posts, err := s.threads.FindTopLevel(ctx, skip, size)
	if err != nil {
		return FetchPostsResult{}, newFetchPostsError(err)
	}

	total, err := s.threads.CountTopLevel(ctx)
	if err != nil {
		return FetchPostsResult{}, newFetchPostsError(err)
	}

	nodes, err := s.buildNodes(ctx, posts, user.AllFields)
	if err != nil {
		return FetchPostsResult{}, newFetchPostsError(err)
	}

	if err = s.expandChildren(ctx, nodes, feedReplyDepth, user.FeedReplyFields); err != nil {
		return FetchPostsResult{}, newFetchPostsError(err)
	}

	s.logger.DebugContext(ctx, "posts fetched",
		slog.Int("page", page),
		slog.Int("size", size),
		slog.Int("count", len(nodes)),
		slog.Int("total", total),
	)

	return FetchPostsResult{
		Posts:  nodes,
		IsNext: total > skip+len(posts),
	}, nil
}

// FetchThreadByID returns a thread with its replies expanded to the requested
// depth. A missing thread is not an error: the result has Found == false.
func (s *Service) FetchThreadByID(ctx context.Context, q FetchThreadQuery) (_ FetchThreadResult, err error) {
	defer s.observe(OpFetchThread, time.Now(), &err)

	if err = appcore.ValidateUUID("threadID", q.ThreadID); err != nil {
		return FetchThreadResult{}, newFetchThreadError(err)
	}

	depth := s.settings.Depth
	if q.Depth != nil {
		depth = *q.Depth
	}
	if err = appcore.ValidateRange("depth", depth, 0, s.settings.MaxDepth); err != nil {
		return FetchThreadResult{}, newFetchThreadError(err)
	}

	if err = s.store.EnsureConnected(ctx); err != nil {
		return FetchThreadResult{}, newFetchThreadError(err)
	}

	found, err := s.threads.FindByID(ctx, q.ThreadID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return FetchThreadResult{Found: false}, nil
		}
		return FetchThreadResult{}, newFetchThreadError(err)
	}

	nodes, err := s.buildNodes(ctx, []*thread.Thread{found}, user.ThreadViewFields)
	if err != nil {
		return FetchThreadResult{}, newFetchThreadError(err)
	}

	if err = s.expandChildren(ctx, nodes, depth, user.ThreadViewFields); err != nil {
		return FetchThreadResult{}, newFetchThreadError(err)
	}

	return FetchThreadResult{Thread: nodes[0], Found: true}, nil
}

// expandChildren resolves replies level by level, at most depth levels below
// the given nodes. Each level costs one thread query and one author query.
// Nodes on the last resolved level keep Children == nil.
func (s *Service) expandChildren(ctx context.Context, level []*thread.Node, depth int, fields []user.Field) error {
	for ; depth > 0 && len(level) > 0; depth-- {
		var ids []uuid.UUID
		for _, node := range level {
			ids = append(ids, node.Thread.Children()...)
			node.Children = make([]*thread.Node, 0, len(node.Thread.Children()))
		}
		if len(ids) == 0 {
			return nil
		}

		replies, err := s.threads.FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load replies: %w", err)
		}

		authors, err := s.loadAuthors(ctx, replies, fields)
		if err != nil {
			return err
		}

		byID := make(map[uuid.UUID]*thread.Thread, len(replies))
		for _, r := range replies {
			byID[r.ID()] = r
		}

		next := make([]*thread.Node, 0, len(replies))
		for _, node := range level {
			for _, childID := range node.Thread.Children() {
				reply, ok := byID[childID]
				if !ok {
					// dangling child reference
					continue
				}
				child := &thread.Node{Thread: reply, Author: authors[reply.AuthorID()]}
				node.Children = append(node.Children, child)
				next = append(next, child)
			}
		}
		level = next
	}

	return nil
}

// buildNodes wraps threads in nodes with their authors resolved.
func (s *Service) buildNodes(ctx context.Context, threads []*thread.Thread, fields []user.Field) ([]*thread.Node, error) {
	authors, err := s.loadAuthors(ctx, threads, fields)
	if err != nil {
		return nil, err
	}

	nodes := make([]*thread.Node, 0, len(threads))
	for _, t := range threads {
		nodes = append(nodes, &thread.Node{Thread: t, Author: authors[t.AuthorID()]})
	}
	return nodes, nil
}

// loadAuthors fetches the distinct authors of threads in one query.
func (s *Service) loadAuthors(
	ctx context.Context,
	threads []*thread.Thread,
	fields []user.Field,
) (map[uuid.UUID]*user.User, error) {
	seen := make(map[uuid.UUID]struct{}, len(threads))
	ids := make([]uuid.UUID, 0, len(threads))
	for _, t := range threads {
		if _, ok := seen[t.AuthorID()]; ok {
			continue
		}
		seen[t.AuthorID()] = struct{}{}
		ids = append(ids, t.AuthorID())
	}

	authors, err := s.users.FindByIDs(ctx, ids, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}

	byID := make(map[uuid.UUID]*user.User, len(authors))
	for _, a := range authors {
		byID[a.ID()] = a
	}
	return byID, nil
}

func (s *Service) normalizePage(q FetchPostsQuery) (int, int, error) {
	if err := appcore.ValidateNonNegative("pageNumber", q.PageNumber); err != nil {
		return 0, 0, err
	}
	if err := appcore.ValidateNonNegative("pageSize", q.PageSize); err != nil {
		return 0, 0, err
	}

	page := q.PageNumber
	if page == 0 {
		page = 1
	}
	size := q.PageSize
	if size == 0 {
		size = s.settings.DefaultPageSize
	}
	if s.settings.MaxPageSize > 0 && size > s.settings.MaxPageSize {
		size = s.settings.MaxPageSize
	}
	return page, size, nil
}
