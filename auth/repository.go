package auth

import "context"

// Repository is the persistence boundary for users and their bearer tokens.
// Implementations return apperror types: NotFoundError for absent rows,
// ConflictError for duplicate emails, DatabaseError for everything else.
type Repository interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, user *User) (*User, error)

	// UpsertToken stores token as the single credential for userID,
	// atomically replacing any previously issued token.
	UpsertToken(ctx context.Context, userID int64, token string) error
	// GetUserByToken resolves a bearer token to its user, or NotFoundError.
	GetUserByToken(ctx context.Context, token string) (*User, error)
}
