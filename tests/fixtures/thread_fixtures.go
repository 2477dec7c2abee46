package fixtures

import (
	threadapp "github.com/lllypuk/threads/internal/application/thread"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// CreateThreadCommandBuilder builds a CreateThreadCommand.
type CreateThreadCommandBuilder struct {
	cmd threadapp.CreateThreadCommand
}

// NewCreateThreadCommandBuilder starts from a valid command for author.
func NewCreateThreadCommandBuilder(author uuid.UUID) *CreateThreadCommandBuilder {
	return &CreateThreadCommandBuilder{
		cmd: threadapp.CreateThreadCommand{
			Text:     "Test thread",
			AuthorID: author,
			Path:     "/",
		},
	}
}

// WithText sets the thread text.
func (b *CreateThreadCommandBuilder) WithText(text string) *CreateThreadCommandBuilder {
	b.cmd.Text = text
	return b
}

// InCommunity sets a community reference.
func (b *CreateThreadCommandBuilder) InCommunity(id uuid.UUID) *CreateThreadCommandBuilder {
	b.cmd.CommunityID = id
	return b
}

// WithPath sets the page to revalidate; empty skips revalidation.
func (b *CreateThreadCommandBuilder) WithPath(path string) *CreateThreadCommandBuilder {
	b.cmd.Path = path
	return b
}

// Build returns the command.
func (b *CreateThreadCommandBuilder) Build() threadapp.CreateThreadCommand {
	return b.cmd
}

// AddCommentCommandBuilder builds an AddCommentCommand.
type AddCommentCommandBuilder struct {
	cmd threadapp.AddCommentCommand
}

// NewAddCommentCommandBuilder starts from a valid reply to threadID by author.
func NewAddCommentCommandBuilder(threadID, author uuid.UUID) *AddCommentCommandBuilder {
	return &AddCommentCommandBuilder{
		cmd: threadapp.AddCommentCommand{
			ThreadID: threadID,
			Text:     "Test reply",
			AuthorID: author,
			Path:     "/thread/" + threadID.String(),
		},
	}
}

// WithText sets the reply text.
func (b *AddCommentCommandBuilder) WithText(text string) *AddCommentCommandBuilder {
	b.cmd.Text = text
	return b
}

// WithPath sets the page to revalidate.
func (b *AddCommentCommandBuilder) WithPath(path string) *AddCommentCommandBuilder {
	b.cmd.Path = path
	return b
}

// Build returns the command.
func (b *AddCommentCommandBuilder) Build() threadapp.AddCommentCommand {
	return b.cmd
}
