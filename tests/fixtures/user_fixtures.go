package fixtures

import (
	userapp "github.com/lllypuk/threads/internal/application/user"
)

// UpdateUserCommandBuilder builds an UpdateUserCommand.
type UpdateUserCommandBuilder struct {
	cmd userapp.UpdateUserCommand
}

// NewUpdateUserCommandBuilder starts from a complete profile for externalID.
func NewUpdateUserCommandBuilder(externalID string) *UpdateUserCommandBuilder {
	return &UpdateUserCommandBuilder{
		cmd: userapp.UpdateUserCommand{
			UserID:   externalID,
			Username: "tester",
			Name:     "Test User",
			Bio:      "Writes tests",
			Image:    "https://img.example.com/tester.png",
			Path:     "/profile/edit",
		},
	}
}

// WithUsername sets the username.
func (b *UpdateUserCommandBuilder) WithUsername(username string) *UpdateUserCommandBuilder {
	b.cmd.Username = username
	return b
}

// WithName sets the display name.
func (b *UpdateUserCommandBuilder) WithName(name string) *UpdateUserCommandBuilder {
	b.cmd.Name = name
	return b
}

// WithBio sets the bio.
func (b *UpdateUserCommandBuilder) WithBio(bio string) *UpdateUserCommandBuilder {
	b.cmd.Bio = bio
	return b
}

// WithPath sets the page to revalidate.
func (b *UpdateUserCommandBuilder) WithPath(path string) *UpdateUserCommandBuilder {
	b.cmd.Path = path
	return b
}

// Build returns the command.
func (b *UpdateUserCommandBuilder) Build() userapp.UpdateUserCommand {
	return b.cmd
}
