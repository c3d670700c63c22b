package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"mdblog/internal/model"
	"mdblog/internal/repository"
)

// PostPostgres is a PostgreSQL implementation of repository.PostRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type PostPostgres struct {
	db *sql.DB
}

// NewPostPostgres creates a new PostPostgres repository.
func NewPostPostgres(db *sql.DB) *PostPostgres {
	return &PostPostgres{db: db}
}

var _ repository.PostRepository = (*PostPostgres)(nil)

const postColumns = `p.id, p.title, p.content, p.top_image, p.published, p.author_id, u.name, p.created_at, p.updated_at`

const postFrom = `FROM posts p JOIN users u ON u.id = p.author_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(s rowScanner) (*model.Post, error) {
	var (
		p        model.Post
		topImage sql.NullString
	)
	if err := s.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&topImage,
		&p.Published,
		&p.AuthorID,
		&p.AuthorName,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.TopImage = topImage.String
	return &p, nil
}

// scanBare scans a row returned by INSERT/UPDATE ... RETURNING, which has no author join.
func scanBare(s rowScanner) (*model.Post, error) {
	var (
		p        model.Post
		topImage sql.NullString
	)
	if err := s.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&topImage,
		&p.Published,
		&p.AuthorID,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.TopImage = topImage.String
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostPostgres) queryPosts(ctx context.Context, q string, args ...any) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new post row and returns the stored record.
func (r *PostPostgres) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	const q = `
		INSERT INTO posts (id, title, content, top_image, published, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, title, content, top_image, published, author_id, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		post.ID,
		post.Title,
		post.Content,
		nullString(post.TopImage),
		post.Published,
		post.AuthorID,
		post.CreatedAt,
		post.UpdatedAt,
	)
	return scanBare(row)
}

// CreateMany inserts posts atomically; either all rows are stored or none.
func (r *PostPostgres) CreateMany(ctx context.Context, posts []model.Post) (err error) {
	const q = `
		INSERT INTO posts (id, title, content, top_image, published, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, p := range posts {
		if _, err = tx.ExecContext(ctx, q,
			p.ID,
			p.Title,
			p.Content,
			nullString(p.TopImage),
			p.Published,
			p.AuthorID,
			p.CreatedAt,
			p.UpdatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// FindByID fetches a single post by its ID, joined with its author.
func (r *PostPostgres) FindByID(ctx context.Context, id string) (*model.Post, error) {
	q := `SELECT ` + postColumns + ` ` + postFrom + ` WHERE p.id = $1`
	return scanPost(r.db.QueryRowContext(ctx, q, id))
}

// FindOwned fetches a post by ID constrained to its author.
func (r *PostPostgres) FindOwned(ctx context.Context, authorID, id string) (*model.Post, error) {
	q := `SELECT ` + postColumns + ` ` + postFrom + ` WHERE p.id = $1 AND p.author_id = $2`
	return scanPost(r.db.QueryRowContext(ctx, q, id, authorID))
}

// ListPublished returns published posts using LIMIT/OFFSET pagination and a total count.
func (r *PostPostgres) ListPublished(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Post], error) {
	const qCount = `SELECT COUNT(*) FROM posts WHERE published = true`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + postColumns + ` ` + postFrom + `
		WHERE p.published = true
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1 OFFSET $2`
	items, err := r.queryPosts(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Post]{
		Items: items,
		Total: total,
	}, nil
}

// AllPublished returns every published post, newest first.
func (r *PostPostgres) AllPublished(ctx context.Context) ([]model.Post, error) {
	q := `SELECT ` + postColumns + ` ` + postFrom + `
		WHERE p.published = true
		ORDER BY p.created_at DESC, p.id DESC`
	return r.queryPosts(ctx, q)
}

// ListByAuthor returns all posts of one author, drafts included.
func (r *PostPostgres) ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error) {
	q := `SELECT ` + postColumns + ` ` + postFrom + `
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC, p.id DESC`
	return r.queryPosts(ctx, q, authorID)
}

// Update writes the mutable fields of a post. A missing row yields sql.ErrNoRows.
func (r *PostPostgres) Update(ctx context.Context, post *model.Post) (*model.Post, error) {
	const q = `
		UPDATE posts
		SET title = $2, content = $3, top_image = $4, published = $5, updated_at = $6
		WHERE id = $1
		RETURNING id, title, content, top_image, published, author_id, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		post.ID,
		post.Title,
		post.Content,
		nullString(post.TopImage),
		post.Published,
		post.UpdatedAt,
	)
	return scanBare(row)
}

// Delete removes a post by ID. It does not return an error if the row does not exist.
func (r *PostPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
