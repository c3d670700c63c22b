// Package views holds the embedded HTML templates and the Fiber view engine that renders them.
package views

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"

	"mdblog/internal/markdown"
)

//go:embed templates
var templates embed.FS

// Layout is the default layout passed to c.Render.
const Layout = "layouts/main"

// NewEngine builds the template engine. Dates are displayed in loc.
func NewEngine(loc *time.Location) *html.Engine {
	if loc == nil {
		loc = time.UTC
	}
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(map[string]any{
		"markdown": markdown.Render,
		"excerpt":  markdown.Excerpt,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(loc).Format("2006/01/02 15:04")
		},
		"errs": func(fields map[string][]string, key string) []string {
			return fields[key]
		},
	})
	return engine
}
