package handler

import (
	"github.com/gofiber/fiber/v2"

	"mdblog/internal/http/middleware"
	"mdblog/internal/http/views"
)

// render executes a page template inside the main layout. The logged-in identity is
// always available to templates as .User.
func render(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = middleware.CurrentUser(c)
	}
	return c.Status(status).Render(name, data, views.Layout)
}

func seeOther(c *fiber.Ctx, to string) error {
	return c.Redirect(to, fiber.StatusSeeOther)
}
