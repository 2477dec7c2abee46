package thread_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/threads/internal/application/appcore"
	threadapp "github.com/lllypuk/threads/internal/application/thread"
	"github.com/lllypuk/threads/internal/domain/errs"
	"github.com/lllypuk/threads/internal/domain/thread"
	"github.com/lllypuk/threads/internal/domain/uuid"
	"github.com/lllypuk/threads/tests/testutil"
)

func ids(nodes []*thread.Node) []uuid.UUID {
	result := make([]uuid.UUID, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, n.Thread.ID())
	}
	return result
}

func TestFetchPosts_Pagination(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var seeded []*thread.Thread
	for i := range 5 {
		seeded = append(seeded, f.seedThread(t, alice, "post", base.Add(time.Duration(i)*time.Minute)))
	}

	tests := []struct {
		name     string
		page     int
		size     int
		expected []uuid.UUID
		isNext   bool
	}{
		{"first page", 1, 2, []uuid.UUID{seeded[4].ID(), seeded[3].ID()}, true},
		{"second page", 2, 2, []uuid.UUID{seeded[2].ID(), seeded[1].ID()}, true},
		{"last page", 3, 2, []uuid.UUID{seeded[0].ID()}, false},
		{"past the end", 4, 2, []uuid.UUID{}, false},
		{"exact fit", 1, 5, []uuid.UUID{seeded[4].ID(), seeded[3].ID(), seeded[2].ID(), seeded[1].ID(), seeded[0].ID()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.service.FetchPosts(context.Background(), threadapp.FetchPostsQuery{
				PageNumber: tt.page,
				PageSize:   tt.size,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(result.Posts))
			assert.Equal(t, tt.isNext, result.IsNext)
		})
	}
}

func TestFetchPosts_Defaults(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	base := time.Now().UTC()
	for i := range 25 {
		f.seedThread(t, alice, "post", base.Add(time.Duration(i)*time.Second))
	}

	result, err := f.service.FetchPosts(context.Background(), threadapp.FetchPostsQuery{})
	require.NoError(t, err)
	assert.Len(t, result.Posts, 20)
	assert.True(t, result.IsNext)
}

func TestFetchPosts_PageSizeCapped(t *testing.T) {
	settings := threadapp.DefaultSettings()
	settings.MaxPageSize = 3
	f := newFixture(t, settings)
	alice := f.addUser(t, "alice")

	base := time.Now().UTC()
	for i := range 4 {
		f.seedThread(t, alice, "post", base.Add(time.Duration(i)*time.Second))
	}

	result, err := f.service.FetchPosts(context.Background(), threadapp.FetchPostsQuery{PageNumber: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Len(t, result.Posts, 3)
	assert.True(t, result.IsNext)
}

func TestFetchPosts_InvalidPage(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.FetchPosts(context.Background(), threadapp.FetchPostsQuery{PageNumber: -1})
	var fetchErr *threadapp.FetchPostsError
	require.ErrorAs(t, err, &fetchErr)
	require.ErrorIs(t, err, appcore.ErrValidationFailed)

	_, err = f.service.FetchPosts(context.Background(), threadapp.FetchPostsQuery{PageSize: -5})
	require.ErrorIs(t, err, appcore.ErrValidationFailed)
}

func TestFetchPosts_ExcludesReplies(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	root := f.seedThread(t, alice, "root", time.Now().UTC())
	f.reply(t, root.ID(), bob, "reply")

	result, err := f.service.FetchPosts(context.Background(), threadapp.FetchPostsQuery{PageNumber: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{root.ID()}, ids(result.Posts))
	assert.False(t, result.IsNext)
}

func TestFetchPosts_AuthorShapes(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	root := f.seedThread(t, alice, "root", time.Now().UTC())
	reply := f.reply(t, root.ID(), bob, "reply")
	f.reply(t, reply.ID(), alice, "nested")

	result, err := f.service.FetchPosts(context.Background(), threadapp.FetchPostsQuery{PageNumber: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)

	post := result.Posts[0]
	require.NotNil(t, post.Author)
	assert.Equal(t, alice.Username(), post.Author.Username(), "posts carry the full author")
	assert.Equal(t, alice.Bio(), post.Author.Bio())

	testutil.RequireChildIDs(t, post, reply.ID())
	child := post.Children[0]
	require.NotNil(t, child.Author)
	assert.Equal(t, bob.ID(), child.Author.ID())
	assert.Equal(t, bob.Name(), child.Author.Name())
	assert.Equal(t, bob.Image(), child.Author.Image())
	assert.Empty(t, child.Author.Username(), "reply authors are reduced")
	assert.Empty(t, child.Author.Bio())

	assert.False(t, child.Expanded(), "feed shows one reply level")
	testutil.AssertTreeDepth(t, post, 1)
}

func TestFetchPosts_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.threads.FailOn("CountTopLevel", errors.New("boom"))

	_, err := f.service.FetchPosts(context.Background(), threadapp.FetchPostsQuery{})
	var fetchErr *threadapp.FetchPostsError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 500, fetchErr.HTTPStatus())
	assert.Contains(t, err.Error(), "error fetching posts")
}

func TestFetchThreadByID_ExpandsToDepth(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	root := f.seedThread(t, alice, "root", time.Now().UTC())
	r1 := f.reply(t, root.ID(), bob, "r1")
	r2 := f.reply(t, root.ID(), alice, "r2")
	r11 := f.reply(t, r1.ID(), alice, "r1.1")
	r111 := f.reply(t, r11.ID(), bob, "r1.1.1")

	result, err := f.service.FetchThreadByID(context.Background(), threadapp.FetchThreadQuery{ThreadID: root.ID()})
	require.NoError(t, err)
	require.True(t, result.Found)

	tree := result.Thread
	testutil.AssertTreeDepth(t, tree, thread.DefaultDepth)
	testutil.RequireChildIDs(t, tree, r1.ID(), r2.ID())

	n1 := tree.Find(r1.ID())
	require.NotNil(t, n1)
	testutil.RequireChildIDs(t, n1, r11.ID())

	n11 := tree.Find(r11.ID())
	require.NotNil(t, n11)
	assert.False(t, n11.Expanded())
	assert.Equal(t, []uuid.UUID{r111.ID()}, n11.Thread.Children(), "unresolved IDs stay available")
	assert.Nil(t, tree.Find(r111.ID()))

	require.NotNil(t, tree.Author)
	assert.Equal(t, alice.ExternalID(), tree.Author.ExternalID())
	assert.Equal(t, alice.Name(), tree.Author.Name())
	assert.Empty(t, tree.Author.Bio(), "thread view uses the reduced author")
}

func TestFetchThreadByID_CustomDepth(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	root := f.seedThread(t, alice, "root", time.Now().UTC())
	r1 := f.reply(t, root.ID(), alice, "r1")
	r11 := f.reply(t, r1.ID(), alice, "r1.1")
	r111 := f.reply(t, r11.ID(), alice, "r1.1.1")

	zero := 0
	result, err := f.service.FetchThreadByID(context.Background(), threadapp.FetchThreadQuery{
		ThreadID: root.ID(),
		Depth:    &zero,
	})
	require.NoError(t, err)
	assert.False(t, result.Thread.Expanded())

	three := 3
	result, err = f.service.FetchThreadByID(context.Background(), threadapp.FetchThreadQuery{
		ThreadID: root.ID(),
		Depth:    &three,
	})
	require.NoError(t, err)
	testutil.AssertTreeDepth(t, result.Thread, 3)
	assert.NotNil(t, result.Thread.Find(r111.ID()))
}

func TestFetchThreadByID_DepthOutOfRange(t *testing.T) {
	f := newFixture(t)

	for _, depth := range []int{-1, 11} {
		_, err := f.service.FetchThreadByID(context.Background(), threadapp.FetchThreadQuery{
			ThreadID: uuid.NewUUID(),
			Depth:    &depth,
		})
		var fetchErr *threadapp.FetchThreadError
		require.ErrorAs(t, err, &fetchErr)
		require.ErrorIs(t, err, appcore.ErrValidationFailed)
	}
}

func TestFetchThreadByID_NotFound(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.FetchThreadByID(context.Background(), threadapp.FetchThreadQuery{ThreadID: uuid.NewUUID()})
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Nil(t, result.Thread)
}

func TestFetchThreadByID_DanglingReferences(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	ghostAuthor := uuid.NewUUID()
	root := thread.Reconstruct(uuid.NewUUID(), "root", ghostAuthor, "", "",
		[]uuid.UUID{uuid.NewUUID()}, time.Now().UTC())
	require.NoError(t, f.threads.Insert(context.Background(), root))
	r1 := f.reply(t, root.ID(), alice, "kept")

	result, err := f.service.FetchThreadByID(context.Background(), threadapp.FetchThreadQuery{ThreadID: root.ID()})
	require.NoError(t, err)
	require.True(t, result.Found)

	assert.Nil(t, result.Thread.Author, "missing author resolves to nil")
	testutil.RequireChildIDs(t, result.Thread, r1.ID())
}

func TestFetchThreadByID_BatchesPerLevel(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	root := f.seedThread(t, alice, "root", time.Now().UTC())
	for range 5 {
		r := f.reply(t, root.ID(), alice, "reply")
		f.reply(t, r.ID(), alice, "nested")
	}

	before := f.threads.CallCount("FindByIDs")
	_, err := f.service.FetchThreadByID(context.Background(), threadapp.FetchThreadQuery{ThreadID: root.ID()})
	require.NoError(t, err)
	assert.Equal(t, 2, f.threads.CallCount("FindByIDs")-before, "one query per level")
}

func TestFetchThreadByID_Unavailable(t *testing.T) {
	f := newFixture(t)
	f.store.SetConnectError(errs.ErrUnavailable)

	_, err := f.service.FetchThreadByID(context.Background(), threadapp.FetchThreadQuery{ThreadID: uuid.NewUUID()})
	var fetchErr *threadapp.FetchThreadError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 503, fetchErr.HTTPStatus())
}
