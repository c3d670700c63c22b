package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"time"

	"mdblog/internal/model"
	"mdblog/internal/storage"
)

// DefaultMaxImageBytes is the upload limit used when none is configured.
const DefaultMaxImageBytes int64 = 5 * 1024 * 1024

var (
	ErrImageEmpty    = errors.New("image file is empty")
	ErrImageTooLarge = errors.New("image file is too large")
	ErrImageType     = errors.New("image type is not allowed")
	ErrImageNil      = errors.New("image reader is nil")
)

var allowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/svg+xml",
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// ImageUpload is a cover image received from a form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageService stores cover images and resolves them for delivery.
// Stored images are addressed by URLs under model.ManagedImagePrefix.
type ImageService interface {
	// Save validates and stores the upload, returning its public URL.
	Save(ctx context.Context, up *ImageUpload) (string, error)

	// Remove deletes a managed image. URLs outside the managed prefix are ignored.
	Remove(ctx context.Context, url string) error

	// PresignURL returns a direct download URL, or storage.ErrPresignUnsupported.
	PresignURL(ctx context.Context, key string) (string, error)

	// Open streams a stored image.
	Open(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error)
}

type imageService struct {
	store    storage.Storage
	maxBytes int64
	expiry   time.Duration
	now      func() time.Time
}

// NewImageService constructs an ImageService. maxBytes <= 0 selects DefaultMaxImageBytes.
func NewImageService(store storage.Storage, maxBytes int64, presignExpiry time.Duration) ImageService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if presignExpiry <= 0 {
		presignExpiry = time.Hour
	}
	return &imageService{store: store, maxBytes: maxBytes, expiry: presignExpiry, now: time.Now}
}

func (s *imageService) Save(ctx context.Context, up *ImageUpload) (string, error) {
	if up == nil || up.Body == nil {
		return "", ErrImageNil
	}
	if up.Size <= 0 {
		return "", ErrImageEmpty
	}
	if up.Size > s.maxBytes {
		return "", fmt.Errorf("%w: max %d MB", ErrImageTooLarge, s.maxBytes/1024/1024)
	}
	if !slices.Contains(allowedImageTypes, up.ContentType) {
		ct := up.ContentType
		if ct == "" {
			ct = "unknown"
		}
		return "", fmt.Errorf("%w: %s", ErrImageType, ct)
	}

	key := ImageKey(s.now(), up.Filename)
	info, err := s.store.Put(ctx, key, up.Body, storage.PutObjectOptions{
		Size:        up.Size,
		ContentType: up.ContentType,
		Metadata:    map[string]string{"original-filename": sanitizeName(up.Filename)},
	})
	if err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}
	return model.ManagedImagePrefix + info.Key, nil
}

func (s *imageService) Remove(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, model.ManagedImagePrefix)
	if !ok || key == "" {
		return nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return nil
}

func (s *imageService) PresignURL(ctx context.Context, key string) (string, error) {
	return s.store.PresignGet(ctx, key, s.expiry)
}

func (s *imageService) Open(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	return s.store.Get(ctx, key)
}

// ImageKey builds the storage key for an upload: millisecond timestamp, underscore,
// and the file name with every character outside [A-Za-z0-9.-] replaced by '_'.
func ImageKey(at time.Time, filename string) string {
	return fmt.Sprintf("%d_%s", at.UnixMilli(), sanitizeName(filename))
}

func sanitizeName(name string) string {
	clean := unsafeNameChars.ReplaceAllString(name, "_")
	if clean == "" {
		return "image"
	}
	return clean
}
