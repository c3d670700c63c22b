package middleware

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdblog/internal/auth"
)

type stubParser map[string]*auth.Identity

func (s stubParser) Parse(token string) (*auth.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

func newSessionApp() *fiber.App {
	cookie := SessionCookie{Name: "session"}
	app := fiber.New()
	app.Use(Session(stubParser{"good": {UserID: "u-1", Name: "Test"}}, cookie))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		if id := CurrentUser(c); id != nil {
			return c.SendString(id.UserID)
		}
		return c.SendString("anonymous")
	})
	app.Get("/private", RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendString("secret")
	})
	app.Get("/login", RedirectIfAuthenticated("/dashboard"), func(c *fiber.Ctx) error {
		return c.SendString("login form")
	})
	return app
}

func body(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestSession(t *testing.T) {
	app := newSessionApp()

	t.Run("anonymous", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
		require.NoError(t, err)
		assert.Equal(t, "anonymous", body(t, resp.Body))
	})

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Cookie", "session=good")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "u-1", body(t, resp.Body))
	})

	t.Run("invalid cookie is cleared", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Cookie", "session=forged")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "anonymous", body(t, resp.Body))
		assert.Contains(t, resp.Header.Get("Set-Cookie"), "session=;")
	})
}

func TestRequireAuth(t *testing.T) {
	app := newSessionApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Cookie", "session=good")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "secret", body(t, resp.Body))
}

func TestRedirectIfAuthenticated(t *testing.T) {
	app := newSessionApp()

	req := httptest.NewRequest("GET", "/login", nil)
	req.Header.Set("Cookie", "session=good")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, err = app.Test(httptest.NewRequest("GET", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, "login form", body(t, resp.Body))
}

func TestSetSession(t *testing.T) {
	app := fiber.New()
	cookie := SessionCookie{Name: "session", Secure: true}
	app.Post("/in", func(c *fiber.Ctx) error {
		SetSession(c, cookie, "tok", time.Now().Add(time.Hour))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/in", nil))
	require.NoError(t, err)
	sc := resp.Header.Get("Set-Cookie")
	assert.Contains(t, sc, "session=tok")
	assert.Contains(t, sc, "HttpOnly")
	assert.Contains(t, sc, "secure")
	assert.Contains(t, sc, "SameSite=Lax")
}
