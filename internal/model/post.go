package model

import (
	"strings"
	"time"
)

// ManagedImagePrefix is the URL path under which application-stored images are served.
// Cover images outside this prefix (for example seeded external URLs) are never deleted.
const ManagedImagePrefix = "/images/"

// Post is a Markdown blog entry. TopImage is empty when the post has no cover image.
// AuthorName is populated on reads that join the author.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	TopImage   string    `json:"top_image,omitempty"`
	Published  bool      `json:"published"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasManagedImage reports whether the cover image is stored by this application.
func (p Post) HasManagedImage() bool {
	return strings.HasPrefix(p.TopImage, ManagedImagePrefix)
}
