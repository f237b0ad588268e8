package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/rvalenzuelab/voznote/internal/domain/user"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
)

// UserRepository implements user.Repository over the local cache
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) user.Repository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, u.ID, u.Email, u.PasswordHash, u.CreatedAt.Unix())
	if err != nil {
		return errors.StorageError("Failed to create user", err)
	}
	return nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getBy(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getBy(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

func (r *UserRepository) getBy(ctx context.Context, query string, arg any) (*user.User, error) {
	var u user.User
	var createdAt int64

	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User")
	}
	if err != nil {
		return nil, errors.StorageError("Failed to get user", err)
	}

	u.CreatedAt = time.Unix(createdAt, 0)
	return &u, nil
}
