package repository

import (
	"context"

	"mdblog/internal/model"
)

// PostRepository defines data access for posts using SQL queries only.
// Lookups that find nothing return sql.ErrNoRows.
type PostRepository interface {
	// Create inserts a post and returns the stored row.
	Create(ctx context.Context, post *model.Post) (*model.Post, error)

	// CreateMany inserts all posts in a single transaction.
	CreateMany(ctx context.Context, posts []model.Post) error

	// FindByID returns a post with its author name, published or not.
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// FindOwned returns the post only if it belongs to authorID.
	FindOwned(ctx context.Context, authorID, id string) (*model.Post, error)

	// ListPublished returns a page of published posts, newest first, and the total count.
	ListPublished(ctx context.Context, pq PageQuery) (*PageResult[model.Post], error)

	// AllPublished returns every published post, newest first.
	AllPublished(ctx context.Context) ([]model.Post, error)

	// ListByAuthor returns all posts of an author, newest first.
	ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error)

	// Update overwrites title, content, top image and published flag.
	Update(ctx context.Context, post *model.Post) (*model.Post, error)

	// Delete removes a post by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
