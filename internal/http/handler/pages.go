package handler

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"mdblog/internal/service"
)

// PageSize is the number of posts per page on the top page.
const PageSize = 10

// maxPage keeps (page-1)*PageSize from overflowing.
const maxPage = math.MaxInt/PageSize + 1

// Home lists published posts, or search results when ?search= is non-empty.
func Home(posts service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		page = min(page, maxPage)
		offset := (page - 1) * PageSize
		q := c.Query("search")

		var res *service.PostListResult
		if q != "" {
			res, err = posts.Search(c.UserContext(), q, PageSize, offset)
		} else {
			res, err = posts.ListPublished(c.UserContext(), PageSize, offset)
		}
		if err != nil {
			return err
		}

		data := fiber.Map{
			"Posts":  res.Items,
			"Total":  res.Total,
			"Search": q,
		}
		if page > 1 {
			data["PrevPage"] = page - 1
		}
		if len(res.Items) < res.Total-offset {
			data["NextPage"] = page + 1
		}
		return render(c, fiber.StatusOK, "index", data)
	}
}

// ShowPost renders a published post.
func ShowPost(posts service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := posts.GetPublished(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrIDRequired) {
				return fiber.ErrNotFound
			}
			return err
		}
		return render(c, fiber.StatusOK, "post", fiber.Map{"Title": p.Title, "Post": p})
	}
}
