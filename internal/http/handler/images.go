package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"mdblog/internal/service"
	"mdblog/internal/storage"
)

// ServeImage delivers a stored cover image. Backends that can presign get a redirect
// to the object store; otherwise the object is streamed with a one hour cache lifetime.
func ServeImage(images service.ImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("*")
		if key == "" {
			return fiber.ErrNotFound
		}

		url, err := images.PresignURL(c.UserContext(), key)
		if err == nil {
			return c.Redirect(url, fiber.StatusFound)
		}
		if !errors.Is(err, storage.ErrPresignUnsupported) {
			return err
		}

		rc, info, err := images.Open(c.UserContext(), key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
				return fiber.ErrNotFound
			}
			return err
		}

		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
		size := int(info.Size)
		if size <= 0 {
			size = -1
		}
		// fasthttp closes rc once the body is written.
		return c.SendStream(rc, size)
	}
}
