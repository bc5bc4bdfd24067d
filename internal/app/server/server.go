package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/SnipURL/internal/app/auth"
	"github.com/sifan077/SnipURL/internal/app/service"
	inthttp "github.com/sifan077/SnipURL/internal/http/handler"
	"github.com/sifan077/SnipURL/internal/http/middleware"
	"go.uber.org/zap"
)

// Dependencies bundles infrastructure dependencies required by the HTTP server.
type Dependencies struct {
	Logger    *zap.Logger
	Postgres  *pgxpool.Pool
	Redis     *redis.Client
	NATS      *nats.Conn
	JetStream nats.JetStreamContext
	Auth      service.AuthService
	Links     service.LinkService
	Tokens    *auth.JWTManager
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New()

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
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
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.CORS())

	if s.deps.Redis != nil {
		s.app.Use(middleware.RateLimit(s.deps.Redis, middleware.DefaultRateLimitConfig(), s.deps.Logger))
	}
}

func (s *Server) registerRoutes() {
	healthHandler := inthttp.NewHealthHandler(s.deps.Postgres)
	healthHandler.Register(s.app)

	authHandler := inthttp.NewAuthHandler(inthttp.AuthDeps{
		Logger: s.deps.Logger,
		Auth:   s.deps.Auth,
		Tokens: s.deps.Tokens,
	})
	authHandler.Register(s.app)

	linkHandler := inthttp.NewLinkHandler(inthttp.LinkDeps{
		Logger: s.deps.Logger,
		Links:  s.deps.Links,
		Tokens: s.deps.Tokens,
	})
	linkHandler.Register(s.app)
}
