package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"mdblog/internal/auth"
	"mdblog/internal/http/middleware"
	"mdblog/internal/service"
)

func LoginForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, fiber.StatusOK, "login", fiber.Map{
			"Title":      "Log in",
			"Email":      "",
			"Registered": c.Query("registered") != "",
		})
	}
}

// Login checks the credentials and starts a session.
func Login(users service.UserService, sessions *auth.Sessions, cookie middleware.SessionCookie) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.FormValue("email")
		user, err := users.Authenticate(c.UserContext(), email, c.FormValue("password"))
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				return render(c, fiber.StatusUnauthorized, "login", fiber.Map{
					"Title":  "Log in",
					"Email":  email,
					"Errors": map[string][]string{service.FormField: {"Invalid email or password."}},
				})
			}
			return err
		}

		token, exp, err := sessions.Issue(user)
		if err != nil {
			return err
		}
		middleware.SetSession(c, cookie, token, exp)
		return seeOther(c, "/dashboard")
	}
}

func RegisterForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, fiber.StatusOK, "register", fiber.Map{
			"Title": "Register",
			"Form":  service.RegisterInput{},
		})
	}
}

// Register creates the account and logs the new user in. If the session cannot be
// issued the user is sent to the login page instead.
func Register(users service.UserService, sessions *auth.Sessions, cookie middleware.SessionCookie) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := service.RegisterInput{
			Name:            c.FormValue("name"),
			Email:           c.FormValue("email"),
			Password:        c.FormValue("password"),
			ConfirmPassword: c.FormValue("confirm_password"),
		}

		user, err := users.Register(c.UserContext(), in)
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				in.Password, in.ConfirmPassword = "", ""
				return render(c, fiber.StatusUnprocessableEntity, "register", fiber.Map{
					"Title":  "Register",
					"Form":   in,
					"Errors": verr.Fields,
				})
			}
			return err
		}

		token, exp, err := sessions.Issue(user)
		if err != nil {
			return seeOther(c, "/login?registered=1")
		}
		middleware.SetSession(c, cookie, token, exp)
		return seeOther(c, "/dashboard")
	}
}

func Logout(cookie middleware.SessionCookie) fiber.Handler {
	return func(c *fiber.Ctx) error {
		middleware.ClearSession(c, cookie)
		return seeOther(c, "/")
	}
}
