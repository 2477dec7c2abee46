package user

// UpdateUserCommand saves a user's profile. UserID is the external auth ID.
type UpdateUserCommand struct {
	UserID   string
	Username string
	Name     string
	Bio      string
	Image    string
	Path     string
}

// FetchUserQuery loads a user by external auth ID.
type FetchUserQuery struct {
	ExternalID string
}
