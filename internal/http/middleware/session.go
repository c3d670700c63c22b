package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"mdblog/internal/auth"
)

// IdentityLocalKey is the locals key holding the *auth.Identity of a logged-in user.
const IdentityLocalKey = "identity"

// SessionParser verifies session tokens.
type SessionParser interface {
	Parse(token string) (*auth.Identity, error)
}

// SessionCookie describes the login cookie.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Session loads the identity from the session cookie into locals. Invalid or expired
// cookies are cleared and the request continues anonymously.
func Session(p SessionParser, cookie SessionCookie) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookie.Name)
		if token == "" {
			return c.Next()
		}
		id, err := p.Parse(token)
		if err != nil {
			ClearSession(c, cookie)
			return c.Next()
		}
		c.Locals(IdentityLocalKey, id)
		return c.Next()
	}
}

// CurrentUser returns the logged-in identity, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(IdentityLocalKey).(*auth.Identity)
	return id
}

// RequireAuth redirects anonymous requests to the login page.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// RedirectIfAuthenticated sends logged-in users away from the login and register pages.
func RedirectIfAuthenticated(to string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) != nil {
			return c.Redirect(to, fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// SetSession writes the session cookie.
func SetSession(c *fiber.Ctx, cookie SessionCookie, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSession expires the session cookie.
func ClearSession(c *fiber.Ctx, cookie SessionCookie) {
	c.Cookie(&fiber.Cookie{
		Name:     cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
