package views

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdblog/internal/auth"
	"mdblog/internal/model"
)

func TestEngineRendersPages(t *testing.T) {
	engine := NewEngine(time.UTC)
	require.NoError(t, engine.Load())

	post := model.Post{
		ID:         "p1",
		Title:      "Hello",
		Content:    "# Heading\n\n<script>alert(1)</script>",
		AuthorName: "Test User",
		Published:  true,
		CreatedAt:  time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}

	t.Run("post page", func(t *testing.T) {
		var buf bytes.Buffer
		err := engine.Render(&buf, "post", map[string]any{"Title": post.Title, "Post": post}, Layout)
		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, "<h1>Heading</h1>")
		assert.Contains(t, out, "2024/05/01 09:30")
		assert.NotContains(t, out, "<script>alert(1)</script>")
		assert.Contains(t, out, "Log in")
	})

	t.Run("index with search", func(t *testing.T) {
		var buf bytes.Buffer
		err := engine.Render(&buf, "index", map[string]any{
			"Posts":    []model.Post{post},
			"Search":   "hello <b>",
			"Total":    1,
			"NextPage": 2,
			"User":     &auth.Identity{UserID: "u1", Name: "Test User"},
		}, Layout)
		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, `href="/posts/p1"`)
		assert.Contains(t, out, "hello &lt;b&gt;")
		assert.Contains(t, out, "page=2")
		assert.Contains(t, out, "Dashboard")
	})

	t.Run("form errors", func(t *testing.T) {
		var buf bytes.Buffer
		err := engine.Render(&buf, "post_form", map[string]any{
			"Post":   &model.Post{},
			"Action": "/manage/posts",
			"Errors": map[string][]string{"title": {"title is required"}},
		}, Layout)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "title is required")
	})

	t.Run("error page", func(t *testing.T) {
		var buf bytes.Buffer
		err := engine.Render(&buf, "error", map[string]any{"Status": 404, "Message": "page not found"}, Layout)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "page not found")
	})
}
