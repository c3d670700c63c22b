package handler

import (
	"github.com/gofiber/fiber/v2"

	"mdblog/internal/auth"
	"mdblog/internal/database"
	"mdblog/internal/http/middleware"
	"mdblog/internal/service"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	DB       database.Pinger
	Posts    service.PostService
	Users    service.UserService
	Images   service.ImageService
	Sessions *auth.Sessions
	Cookie   middleware.SessionCookie
}

// RegisterRoutes installs the session middleware and attaches every page, API and
// ops route to app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Use(middleware.Session(d.Sessions, d.Cookie))

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	app.Get("/images/*", ServeImage(d.Images))

	api := app.Group("/api")
	api.Get("/posts", ListPosts(d.Posts))
	api.Get("/posts/:id", GetPost(d.Posts))

	app.Get("/", Home(d.Posts))
	app.Get("/posts/:id", ShowPost(d.Posts))

	guest := middleware.RedirectIfAuthenticated("/dashboard")
	app.Get("/login", guest, LoginForm())
	app.Post("/login", guest, Login(d.Users, d.Sessions, d.Cookie))
	app.Get("/register", guest, RegisterForm())
	app.Post("/register", guest, Register(d.Users, d.Sessions, d.Cookie))
	app.Post("/logout", Logout(d.Cookie))

	requireAuth := middleware.RequireAuth()
	app.Get("/dashboard", requireAuth, Dashboard(d.Posts))
	app.Post("/dashboard/dummy-posts", requireAuth, CreateDummyPosts(d.Posts))

	manage := app.Group("/manage/posts", requireAuth)
	manage.Get("/create", NewPostForm())
	manage.Post("", CreatePost(d.Posts))
	manage.Get("/:id", ShowOwnPost(d.Posts))
	manage.Get("/:id/edit", EditPostForm(d.Posts))
	manage.Post("/:id", UpdatePost(d.Posts))
	manage.Post("/:id/delete", DeletePost(d.Posts))
}
