package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/CharacterVault/config"
	"github.com/sifan077/CharacterVault/internal/app/service"
	"github.com/sifan077/CharacterVault/internal/app/validation"
	"github.com/sifan077/CharacterVault/internal/http/handler"
	"github.com/sifan077/CharacterVault/internal/http/middleware"
	infraPrometheus "github.com/sifan077/CharacterVault/internal/infra/prometheus"
	"go.uber.org/zap"
)

const bodyLimit = 10 * 1024 * 1024

// Dependencies bundles what the HTTP server needs. Redis and Metrics are optional.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Characters service.CharacterService
	Storage    handler.Pinger
	Redis      redis.UniversalClient
	Metrics    *infraPrometheus.Metrics
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates the HTTP server with every route registered.
func New(deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config == nil {
		deps.Config = &config.Config{}
	}

	app := fiber.New(fiber.Config{
		AppName:               "charactervault",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(deps.Logger, deps.Config.IsProduction()),
	})

	s := &Server{app: app, deps: deps}
	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// App exposes the underlying Fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	cfg := s.deps.Config

	s.app.Use(middleware.RequestID())
	if s.deps.Metrics != nil {
		s.app.Use(middleware.Metrics(s.deps.Metrics))
	}
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.CORS(cfg.App.CORSOrigin, cfg.App.CORSCredentials))
	s.app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))

	if s.deps.Redis != nil {
		s.app.Use(middleware.RateLimit(s.deps.Redis, middleware.RateLimitConfig{
			MaxRequests: cfg.RateLimit.MaxRequests,
			Window:      cfg.RateLimit.Window,
		}, s.deps.Logger))
	}
}

func (s *Server) registerRoutes() {
	handler.NewHealthHandler(handler.HealthDeps{
		Logger:      s.deps.Logger,
		Environment: s.deps.Config.App.Env,
		Version:     s.deps.Config.App.Version,
		Storage:     s.deps.Storage,
	}).Register(s.app)

	characters := handler.NewCharacterHandler(handler.CharacterDeps{
		Logger:     s.deps.Logger,
		Characters: s.deps.Characters,
		Validator:  validation.New(),
	})
	characters.Register(s.app.Group("/collection"))
	characters.Register(s.app.Group("/api/characters"))

	s.app.Use(middleware.NotFound())
}
