package server

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/sirupsen/logrus"

	"sold2move/internal/config"
	"sold2move/internal/models"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config

	accessLog io.WriteCloser
}

// New creates a new server with middleware configured.
func New(cfg *config.Config) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "sold2move-lookup",
		ErrorHandler: errorHandler,
	})

	accessLog := logrus.WithField("component", "http").WriterLevel(logrus.InfoLevel)

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Stream:        accessLog,
		DisableColors: true,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Client-Info", "Apikey"},
		MaxAge:       86400,
	}))

	// Rate limiting per client IP
	if cfg.RateLimitPerMinute > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitPerMinute,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
					Error: "Rate limit exceeded. Please try again later.",
				})
			},
		}))
	}

	return &Server{
		App:       app,
		Cfg:       cfg,
		accessLog: accessLog,
	}
}

// errorHandler renders uncaught errors with the JSON error envelope.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		logrus.WithField("component", "http").WithError(err).Error("Unhandled request error")
	}

	return c.Status(code).JSON(models.ErrorResponse{Error: message})
}

// Start starts the server on the configured address. It blocks until shutdown.
func (s *Server) Start() error {
	logrus.WithField("component", "http").Infof("Starting server on %s", s.Cfg.ServerAddr)
	return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{
		DisableStartupMessage: !s.Cfg.IsDev(),
	})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	err := s.App.Shutdown()
	if cerr := s.accessLog.Close(); err == nil {
		err = cerr
	}
	return err
}
