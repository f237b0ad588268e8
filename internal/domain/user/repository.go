package user

import "context"

// Repository defines the interface for user persistence
type Repository interface {
	// Create inserts a new user
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)
}
