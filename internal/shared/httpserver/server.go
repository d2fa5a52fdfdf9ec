package httpserver

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/rmontero/liveauction/internal/shared/logger"
)

var log = logger.GetLogger()

// RouteRegistrar is implemented by every handler that mounts routes on the
// fiber app.
type RouteRegistrar interface {
	RegisterRoutes(app *fiber.App)
}

type Server struct {
	app *fiber.App
}

// NewServer builds the fiber app with request logging, permissive CORS and
// the health endpoint, then mounts every registrar's routes.
func NewServer(registrars ...RouteRegistrar) *Server {
	app := fiber.New(fiber.Config{
		// Error payloads use the {"detail": ...} shape of the original API.
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{"detail": message})
		},
	})

	// All origins allowed, matching the original API behavior.
	app.Use(cors.New())

	app.Use(func(c *fiber.Ctx) error {
		log.Info("HTTP request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("remote_addr", c.IP()),
		)
		return c.Next()
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	for _, r := range registrars {
		r.RegisterRoutes(app)
	}

	return &Server{app: app}
}

// Start serves until SIGINT, then shuts down with a 5s grace period.
func (s *Server) Start(addr string) error {
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt)
		<-quit

		log.Info("Shutting down HTTP server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.app.ShutdownWithContext(ctx)
	}()

	log.Info("HTTP server started", zap.String("addr", addr))
	return s.app.Listen(addr)
}
