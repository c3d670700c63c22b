package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"mdblog/internal/http/middleware"
	"mdblog/internal/service"
)

// Dashboard lists the user's own posts, drafts included.
func Dashboard(posts service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)
		own, err := posts.ListOwn(c.UserContext(), user.UserID)
		if err != nil {
			return err
		}
		created, _ := strconv.Atoi(c.Query("created"))
		return render(c, fiber.StatusOK, "dashboard", fiber.Map{
			"Title":   "Dashboard",
			"Posts":   own,
			"Created": created,
			"Deleted": c.Query("deleted") != "",
		})
	}
}

func CreateDummyPosts(posts service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)
		n, err := posts.CreateDummyPosts(c.UserContext(), user.UserID)
		if err != nil {
			return err
		}
		return seeOther(c, "/dashboard?created="+strconv.Itoa(n))
	}
}
