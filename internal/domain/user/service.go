package user

import "context"

// Service defines the business interface for accounts
type Service interface {
	// Register creates a new account with a hashed password
	Register(ctx context.Context, email, password string) (*User, error)

	// Authenticate verifies credentials and returns the account
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// GetByID retrieves an account by id
	GetByID(ctx context.Context, id string) (*User, error)
}
