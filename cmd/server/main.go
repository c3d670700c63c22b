package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mdblog/docs"
	"mdblog/internal/auth"
	"mdblog/internal/config"
	"mdblog/internal/database"
	"mdblog/internal/database/migration"
	handlers "mdblog/internal/http/handler"
	"mdblog/internal/http/middleware"
	"mdblog/internal/http/views"
	"mdblog/internal/logging"
	"mdblog/internal/otel"
	"mdblog/internal/repository/postgres"
	"mdblog/internal/service"
	"mdblog/internal/storage"
)

// @title        mdblog API
// @version      1.0
// @description  Read-only JSON access to published blog posts.
// @BasePath     /
func main() {
	cfg := config.Load()
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database, loc)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	store, err := storage.New(cfg.Storage, cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize image storage: %v", err)
	}

	sessions, err := auth.NewSessions(cfg.Session.Secret, time.Duration(cfg.Session.TTLHours)*time.Hour)
	if err != nil {
		log.Fatalf("failed to initialize sessions: %v", err)
	}

	images := service.NewImageService(store, cfg.Storage.MaxImageBytes, time.Duration(cfg.Storage.PresignExpirySec)*time.Second)
	posts := service.NewPostService(postgres.NewPostPostgres(db), images, loc)
	users := service.NewUserService(postgres.NewUserPostgres(db))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "mdblog",
		ErrorHandler: handlers.ErrorHandler(loc),
		Views:        views.NewEngine(loc),
		// Room for the largest accepted image plus the rest of the form.
		BodyLimit: int(cfg.Storage.MaxImageBytes) + 1<<20,
	})

	app.Use(recover.New())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		p := c.Path()
		return p == "/metrics" || strings.HasPrefix(p, "/health")
	})))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(loc))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:       db,
		Posts:    posts,
		Users:    users,
		Images:   images,
		Sessions: sessions,
		Cookie:   middleware.SessionCookie{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure},
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	logging.JSON(loc, map[string]any{
		"component":      "server",
		"event":          "server_starting",
		"status":         "success",
		"port":           cfg.Port,
		"storage_driver": cfg.Storage.Driver,
	})

	if err := app.Listen(":" + cfg.Port); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("failed to start server: %v", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Printf("tracing shutdown: %v", err)
	}
}
