package repository

import (
	"context"

	"mdblog/internal/model"
)

// UserRepository defines data access for users.
type UserRepository interface {
	// Create inserts a user. A taken email yields ErrDuplicate.
	Create(ctx context.Context, user *model.User) (*model.User, error)

	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns sql.ErrNoRows when no user has the email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
