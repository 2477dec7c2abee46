package httphandler

import (
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/lllypuk/threads/internal/domain/thread"
	"github.com/lllypuk/threads/internal/domain/user"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// textPolicy guards rendered thread text. Policies are safe for concurrent
// use once built.
var textPolicy = bluemonday.UGCPolicy()

// AuthorResponse is a thread author. Which fields are set depends on the
// view: feed posts carry the full user, feed replies only id, name and image.
type AuthorResponse struct {
	ID         string   `json:"id"`
	ExternalID string   `json:"external_id,omitempty"`
	Username   string   `json:"username,omitempty"`
	Name       string   `json:"name,omitempty"`
	Bio        string   `json:"bio,omitempty"`
	Image      string   `json:"image,omitempty"`
	Onboarded  *bool    `json:"onboarded,omitempty"`
	Threads    []string `json:"threads,omitempty"`
}

// ThreadResponse is a thread with its resolved author. Replies holds the
// expanded reply nodes; it is omitted on the last expanded level, where only
// ChildIDs are known.
type ThreadResponse struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	TextHTML  string            `json:"text_html"`
	ParentID  *string           `json:"parent_id"`
	Community *string           `json:"community"`
	CreatedAt string            `json:"created_at"`
	Author    *AuthorResponse   `json:"author,omitempty"`
	ChildIDs  []string          `json:"child_ids"`
	Replies   []*ThreadResponse `json:"replies,omitempty"`
}

// FeedResponse is one page of top-level threads.
type FeedResponse struct {
	Posts  []*ThreadResponse `json:"posts"`
	IsNext bool              `json:"is_next"`
}

// UserResponse is a full user record.
type UserResponse struct {
	ID         string   `json:"id"`
	ExternalID string   `json:"external_id"`
	Username   string   `json:"username"`
	Name       string   `json:"name"`
	Bio        string   `json:"bio"`
	Image      string   `json:"image"`
	Onboarded  bool     `json:"onboarded"`
	Threads    []string `json:"threads"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

// ToThreadResponse converts a bare thread, e.g. one just created.
func ToThreadResponse(t *thread.Thread) *ThreadResponse {
	var parentID *string
	if !t.ParentID().IsZero() {
		id := t.ParentID().String()
		parentID = &id
	}

	return &ThreadResponse{
		ID:        t.ID().String(),
		Text:      t.Text(),
		TextHTML:  RenderText(t.Text()),
		ParentID:  parentID,
		CreatedAt: t.CreatedAt().Format(time.RFC3339),
		ChildIDs:  uuid.Strings(t.Children()),
	}
}

// ToNodeResponse converts a node and its expanded replies.
func ToNodeResponse(node *thread.Node) *ThreadResponse {
	resp := ToThreadResponse(node.Thread)
	if node.Author != nil {
		resp.Author = ToAuthorResponse(node.Author)
	} else {
		resp.Author = &AuthorResponse{ID: node.Thread.AuthorID().String()}
	}

	if node.Expanded() {
		resp.Replies = make([]*ThreadResponse, 0, len(node.Children))
		for _, child := range node.Children {
			resp.Replies = append(resp.Replies, ToNodeResponse(child))
		}
	}
	return resp
}

// ToAuthorResponse converts a possibly partially loaded user.
func ToAuthorResponse(u *user.User) *AuthorResponse {
	return &AuthorResponse{
		ID:         u.ID().String(),
		ExternalID: u.ExternalID(),
		Username:   u.Username(),
		Name:       u.Name(),
		Image:      u.Image(),
	}
}

// ToFullAuthorResponse converts a fully loaded user, as resolved for feed posts.
func ToFullAuthorResponse(u *user.User) *AuthorResponse {
	resp := ToAuthorResponse(u)
	onboarded := u.IsOnboarded()
	resp.Bio = u.Bio()
	resp.Onboarded = &onboarded
	resp.Threads = uuid.Strings(u.Threads())
	return resp
}

// RenderText escapes the stored text for HTML output, keeps line breaks and
// passes the result through the UGC policy.
func RenderText(text string) string {
	escaped := strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
	return textPolicy.Sanitize(escaped)
}

// ToFeedResponse converts a feed page.
func ToFeedResponse(posts []*thread.Node, isNext bool) FeedResponse {
	resp := FeedResponse{
		Posts:  make([]*ThreadResponse, 0, len(posts)),
		IsNext: isNext,
	}
	for _, post := range posts {
		item := ToNodeResponse(post)
		if post.Author != nil {
			item.Author = ToFullAuthorResponse(post.Author)
		}
		resp.Posts = append(resp.Posts, item)
	}
	return resp
}

// ToUserResponse converts a user.
func ToUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:         u.ID().String(),
		ExternalID: u.ExternalID(),
		Username:   u.Username(),
		Name:       u.Name(),
		Bio:        u.Bio(),
		Image:      u.Image(),
		Onboarded:  u.IsOnboarded(),
		Threads:    uuid.Strings(u.Threads()),
		CreatedAt:  u.CreatedAt().Format(time.RFC3339),
		UpdatedAt:  u.UpdatedAt().Format(time.RFC3339),
	}
}
