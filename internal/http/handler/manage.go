package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"mdblog/internal/http/middleware"
	"mdblog/internal/model"
	"mdblog/internal/service"
)

func NewPostForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return renderPostForm(c, fiber.StatusOK, "/manage/posts", &model.Post{Published: true}, nil)
	}
}

// CreatePost handles the multipart create form.
func CreatePost(posts service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)
		in, closeImage, err := readPostForm(c)
		if err != nil {
			return err
		}
		defer closeImage()

		_, err = posts.Create(c.UserContext(), user.UserID, in)
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				draft := &model.Post{Title: in.Title, Content: in.Content, Published: in.Published}
				return renderPostForm(c, fiber.StatusUnprocessableEntity, "/manage/posts", draft, verr.Fields)
			}
			return err
		}
		return seeOther(c, "/dashboard")
	}
}

// ShowOwnPost previews a post of the current user, published or draft.
func ShowOwnPost(posts service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := ownPost(c, posts)
		if err != nil {
			return err
		}
		return render(c, fiber.StatusOK, "manage_post", fiber.Map{"Title": p.Title, "Post": p})
	}
}

func EditPostForm(posts service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := ownPost(c, posts)
		if err != nil {
			return err
		}
		return renderPostForm(c, fiber.StatusOK, "/manage/posts/"+p.ID, p, nil)
	}
}

// UpdatePost handles the multipart edit form.
func UpdatePost(posts service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)
		id := c.Params("id")
		in, closeImage, err := readPostForm(c)
		if err != nil {
			return err
		}
		defer closeImage()

		_, err = posts.Update(c.UserContext(), user.UserID, id, in)
		if err != nil {
			var verr *service.ValidationError
			switch {
			case errors.As(err, &verr):
				draft := &model.Post{ID: id, Title: in.Title, Content: in.Content, Published: in.Published}
				if current, gerr := posts.GetOwn(c.UserContext(), user.UserID, id); gerr == nil {
					draft.TopImage = current.TopImage
				}
				return renderPostForm(c, fiber.StatusUnprocessableEntity, "/manage/posts/"+id, draft, verr.Fields)
			case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrIDRequired):
				return fiber.ErrNotFound
			}
			return err
		}
		return seeOther(c, "/dashboard")
	}
}

func DeletePost(posts service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)
		if err := posts.Delete(c.UserContext(), user.UserID, c.Params("id")); err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrIDRequired) {
				return fiber.ErrNotFound
			}
			return err
		}
		return seeOther(c, "/dashboard?deleted=1")
	}
}

func ownPost(c *fiber.Ctx, posts service.PostService) (*model.Post, error) {
	user := middleware.CurrentUser(c)
	p, err := posts.GetOwn(c.UserContext(), user.UserID, c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrIDRequired) {
			return nil, fiber.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func renderPostForm(c *fiber.Ctx, status int, action string, p *model.Post, fields map[string][]string) error {
	title := "New post"
	if p.ID != "" {
		title = "Edit post"
	}
	return render(c, status, "post_form", fiber.Map{
		"Title":  title,
		"Action": action,
		"Post":   p,
		"Errors": fields,
	})
}

// readPostForm collects the post fields and the optional cover image. The returned
// func closes the uploaded file and must always be called.
func readPostForm(c *fiber.Ctx) (service.PostInput, func(), error) {
	in := service.PostInput{
		Title:       c.FormValue("title"),
		Content:     c.FormValue("content"),
		Published:   c.FormValue("published") == "true",
		RemoveImage: c.FormValue("remove_image") == "true",
	}
	noop := func() {}

	fh, err := c.FormFile("top_image")
	if err != nil {
		// No file part, or not a multipart body at all.
		return in, noop, nil
	}
	f, err := fh.Open()
	if err != nil {
		return in, noop, fiber.NewError(fiber.StatusBadRequest, "cannot open uploaded file")
	}

	in.Image = &service.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}
	return in, func() { _ = f.Close() }, nil
}
