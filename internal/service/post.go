package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mdblog/internal/logging"
	"mdblog/internal/model"
	"mdblog/internal/repository"
	"mdblog/internal/search"
)

// MaxTitleLength is the longest accepted post title, in characters.
const MaxTitleLength = 255

var tracer = otel.Tracer("mdblog/internal/service")

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PostListResult is the service-level DTO for paginated posts.
type PostListResult struct {
	Items []model.Post `json:"data"`
	Total int          `json:"total"`
}

// PostInput carries the editable fields of a post form.
// Image is nil when no new file was chosen. RemoveImage clears the current cover
// when no new image is given.
type PostInput struct {
	Title       string
	Content     string
	Published   bool
	Image       *ImageUpload
	RemoveImage bool
}

// PostService defines the use cases for writing and reading posts.
// Owner-scoped methods treat posts of other authors as missing.
type PostService interface {
	ListPublished(ctx context.Context, limit, offset int) (*PostListResult, error)

	// Search matches every published post against query in memory. An empty query yields no posts.
	Search(ctx context.Context, query string, limit, offset int) (*PostListResult, error)

	GetPublished(ctx context.Context, id string) (*model.Post, error)

	ListOwn(ctx context.Context, userID string) ([]model.Post, error)
	GetOwn(ctx context.Context, userID, id string) (*model.Post, error)

	// Create validates the input, stores the image, then inserts the row. A failed insert
	// removes the stored image again.
	Create(ctx context.Context, userID string, in PostInput) (*model.Post, error)

	// Update replaces the post fields. The previous managed image is removed after a
	// successful write; a failed write removes the newly stored one.
	Update(ctx context.Context, userID, id string, in PostInput) (*model.Post, error)

	// Delete removes the row, then its managed image.
	Delete(ctx context.Context, userID, id string) error

	// CreateDummyPosts inserts a fixed set of sample posts and returns how many were created.
	CreateDummyPosts(ctx context.Context, userID string) (int, error)
}

type postService struct {
	repo   repository.PostRepository
	images ImageService
	loc    *time.Location
	now    func() time.Time
}

// NewPostService constructs a new PostService.
func NewPostService(repo repository.PostRepository, images ImageService, loc *time.Location) PostService {
	if loc == nil {
		loc = time.UTC
	}
	return &postService{repo: repo, images: images, loc: loc, now: time.Now}
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *postService) ListPublished(ctx context.Context, limit, offset int) (*PostListResult, error) {
	limit, offset = normalizePage(limit, offset)
	res, err := s.repo.ListPublished(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &PostListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *postService) Search(ctx context.Context, query string, limit, offset int) (*PostListResult, error) {
	limit, offset = normalizePage(limit, offset)
	tokens := search.Tokenize(query)
	if len(tokens) == 0 {
		return &PostListResult{Items: []model.Post{}}, nil
	}

	ctx, span := tracer.Start(ctx, "PostService.Search", trace.WithAttributes(attribute.Int("search.tokens", len(tokens))))
	defer span.End()

	all, err := s.repo.AllPublished(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	hits := search.Filter(all, query)
	span.SetAttributes(attribute.Int("search.corpus_size", len(all)), attribute.Int("search.hits", len(hits)))

	res := &PostListResult{Items: []model.Post{}, Total: len(hits)}
	if offset < len(hits) {
		end := min(offset+limit, len(hits))
		res.Items = hits[offset:end]
	}
	return res, nil
}

func (s *postService) GetPublished(ctx context.Context, id string) (*model.Post, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !p.Published {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *postService) ListOwn(ctx context.Context, userID string) ([]model.Post, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.ListByAuthor(ctx, userID)
}

func (s *postService) GetOwn(ctx context.Context, userID, id string) (*model.Post, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	p, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *postService) Create(ctx context.Context, userID string, in PostInput) (*model.Post, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	title, content, verr := validatePost(in)
	if verr != nil {
		return nil, verr
	}

	var imageURL string
	if in.Image != nil {
		url, err := s.images.Save(ctx, in.Image)
		if err != nil {
			return nil, s.imageFieldError(err)
		}
		imageURL = url
	}

	now := s.now().UTC()
	stored, err := s.repo.Create(ctx, &model.Post{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		TopImage:  imageURL,
		Published: in.Published,
		AuthorID:  userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if imageURL != "" {
			if delErr := s.images.Remove(ctx, imageURL); delErr != nil {
				return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
			}
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *postService) Update(ctx context.Context, userID, id string, in PostInput) (*model.Post, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	title, content, verr := validatePost(in)
	if verr != nil {
		return nil, verr
	}

	existing, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}

	topImage := existing.TopImage
	var newURL string
	switch {
	case in.Image != nil:
		newURL, err = s.images.Save(ctx, in.Image)
		if err != nil {
			return nil, s.imageFieldError(err)
		}
		topImage = newURL
	case in.RemoveImage:
		topImage = ""
	}

	updated, err := s.repo.Update(ctx, &model.Post{
		ID:        existing.ID,
		Title:     title,
		Content:   content,
		TopImage:  topImage,
		Published: in.Published,
		AuthorID:  existing.AuthorID,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		if newURL != "" {
			if delErr := s.images.Remove(ctx, newURL); delErr != nil {
				s.logCleanupFailure("image_rollback_failed", newURL, delErr)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db update failed: %w", err)
	}

	if existing.TopImage != topImage && existing.HasManagedImage() {
		if err := s.images.Remove(ctx, existing.TopImage); err != nil {
			s.logCleanupFailure("image_cleanup_failed", existing.TopImage, err)
		}
	}
	return updated, nil
}

func (s *postService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrIDRequired
	}
	if err := checkID(id); err != nil {
		return err
	}
	existing, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		return notFound(err)
	}
	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("db delete failed: %w", err)
	}
	if existing.HasManagedImage() {
		if err := s.images.Remove(ctx, existing.TopImage); err != nil {
			s.logCleanupFailure("image_cleanup_failed", existing.TopImage, err)
		}
	}
	return nil
}

func (s *postService) CreateDummyPosts(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrIDRequired
	}
	posts := DummyPosts(userID)
	now := s.now().UTC()
	for i := range posts {
		posts[i].ID = uuid.NewString()
		// One second apart so the listing order matches the slice order.
		posts[i].CreatedAt = now.Add(-time.Duration(i) * time.Second)
		posts[i].UpdatedAt = posts[i].CreatedAt
	}
	if err := s.repo.CreateMany(ctx, posts); err != nil {
		return 0, fmt.Errorf("create dummy posts: %w", err)
	}
	return len(posts), nil
}

// DummyPosts returns the sample posts offered on an empty dashboard.
func DummyPosts(authorID string) []model.Post {
	return []model.Post{
		{Title: "はじめてのブログ投稿", Content: "これは最初のブログ投稿です。GoとFiberでブログを作成しています。", Published: true, AuthorID: authorID},
		{Title: "2番目の投稿", Content: "ブログの機能を少しずつ追加していきます。認証機能やダッシュボードなども実装予定です。", Published: true, AuthorID: authorID},
		{Title: "下書きの投稿", Content: "これは下書き状態の投稿です。公開する前に内容を確認してください。", Published: false, AuthorID: authorID},
		{Title: "Fiberの学習記録", Content: "Fiberのルーティングとミドルウェアについて学んでいます。html/templateでのサーバーサイドレンダリングが面白いです。", Published: true, AuthorID: authorID},
		{Title: "pgxの使い方", Content: "pgxとdatabase/sqlを使ったデータベース操作についてまとめました。シンプルで便利です。", Published: true, AuthorID: authorID},
	}
}

func validatePost(in PostInput) (string, string, *ValidationError) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)

	verr := &ValidationError{}
	switch {
	case title == "":
		verr.Add("title", "title is required")
	case utf8.RuneCountInString(title) > MaxTitleLength:
		verr.Add("title", fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	if content == "" {
		verr.Add("content", "content is required")
	}
	if !verr.empty() {
		return "", "", verr
	}
	return title, content, nil
}

// imageFieldError reports upload problems against the top_image form field.
// Validation failures keep their message; storage failures are logged and reported generically.
func (s *postService) imageFieldError(err error) error {
	switch {
	case errors.Is(err, ErrImageEmpty), errors.Is(err, ErrImageTooLarge), errors.Is(err, ErrImageType), errors.Is(err, ErrImageNil):
		return fieldError("top_image", err.Error())
	}
	logging.JSON(s.loc, map[string]any{
		"component":     "post_service",
		"event":         "image_save_failed",
		"status":        "error",
		"error_message": err.Error(),
	})
	return fieldError("top_image", "failed to save image")
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *postService) logCleanupFailure(event, url string, err error) {
	logging.JSON(s.loc, map[string]any{
		"component":     "post_service",
		"event":         event,
		"status":        "error",
		"image_url":     url,
		"error_message": err.Error(),
	})
}
