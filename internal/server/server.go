package server

import (
	"log"

	"jotha-be/internal/bootstrap"
	"jotha-be/internal/config"
	"jotha-be/internal/pkg/logger"
	"jotha-be/internal/pkg/serverutils"
	"jotha-be/internal/service"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// errorStatuses maps service sentinels to HTTP codes.
var errorStatuses = map[error]int{
	service.ErrSessionNotFound:  fiber.StatusNotFound,
	service.ErrCourseAlreadySet: fiber.StatusConflict,
	service.ErrCourseRequired:   fiber.StatusBadRequest,
	service.ErrQuestionRequired: fiber.StatusBadRequest,
	service.ErrUnauthorized:     fiber.StatusUnauthorized,
	logger.ErrLogNotFound:       fiber.StatusNotFound,
}

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

type healthResponse struct {
	Status  string   `json:"status"`
	Indexes []string `json:"indexes"`
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(errorStatuses))

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	app.Get("/health", func(ctx *fiber.Ctx) error {
		status := "ok"
		indexes := c.Registry.Loaded()
		if len(indexes) == 0 {
			status = "degraded"
			indexes = []string{}
		}
		return ctx.JSON(serverutils.SuccessResponse("health", healthResponse{
			Status:  status,
			Indexes: indexes,
		}))
	})

	api := app.Group("/api")

	c.ChatController.RegisterRoutes(api)
	c.AdminController.RegisterRoutes(api)
	c.ChatSocketHandler.RegisterRoutes(api)
}
