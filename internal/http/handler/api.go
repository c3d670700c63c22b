package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mdblog/internal/service"
)

// ListPosts godoc
// @Summary      List or search published posts
// @Description  Without search, published posts newest first. With search, every whitespace separated term must appear in the title or content (case and full-width insensitive).
// @Tags         posts
// @Produce      json
// @Param        search  query     string  false  "search terms"
// @Param        limit   query     int     false  "page size"  default(10)
// @Param        offset  query     int     false  "offset"     default(0)
// @Success      200     {object}  service.PostListResult
// @Failure      400     {object}  errorPayload
// @Failure      500     {object}  errorPayload
// @Router       /api/posts [get]
func ListPosts(posts service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		var res *service.PostListResult
		if q := c.Query("search"); q != "" {
			res, err = posts.Search(c.UserContext(), q, limit, offset)
		} else {
			res, err = posts.ListPublished(c.UserContext(), limit, offset)
		}
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetPost godoc
// @Summary      Get a published post
// @Tags         posts
// @Produce      json
// @Param        id   path      string  true  "post id (uuid)"
// @Success      200  {object}  model.Post
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/posts/{id} [get]
func GetPost(posts service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		p, err := posts.GetPublished(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "post not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(p)
	}
}
