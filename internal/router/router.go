// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-ledger/internal/config"
	"github.com/iliyamo/cinema-ledger/internal/handler"
	"github.com/iliyamo/cinema-ledger/internal/metrics"
	"github.com/iliyamo/cinema-ledger/internal/middleware"
	"github.com/iliyamo/cinema-ledger/internal/service"
)

// Deps are the collaborators the HTTP surface needs. Redis and Metrics may
// be nil; caching, rate limiting and /metrics are then disabled.
type Deps struct {
	Cfg     config.Config
	Svc     service.BookingUseCase
	Redis   *redis.Client
	Metrics *metrics.Metrics
}

// New builds the echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Timeout(d.Cfg.RequestTimeout))
	e.Use(middleware.NewTokenBucket(d.Cfg.RateLimit, d.Redis))

	RegisterRoutes(e, d.Metrics)
	RegisterAuth(e, handler.NewAuthHandler(d.Svc, d.Cfg.JWTSecret, time.Duration(d.Cfg.AccessTTLMin)*time.Minute), d.Cfg.JWTSecret)
	RegisterPublic(e, handler.NewPublicHandler(d.Svc), middleware.NewRedisCache(d.Cfg.Cache, d.Redis))

	invalidate := middleware.InvalidateCache(d.Cfg.Cache, d.Redis)
	RegisterCustomer(e, handler.NewBookingHandler(d.Svc), d.Cfg.JWTSecret, invalidate)
	RegisterAdmin(e, handler.NewAdminHandler(d.Svc), d.Cfg.JWTSecret, invalidate)
	return e
}

// RegisterRoutes registers the health check and, when metrics are enabled,
// the prometheus endpoint.
func RegisterRoutes(e *echo.Echo, m *metrics.Metrics) {
	e.GET("/healthz", handler.Health)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
}

// RegisterAuth registers registration and login under /v1/auth and the
// profile endpoint, which requires a token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the unauthenticated catalog endpoints. Responses
// go through the response cache.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/movies", cache)
	g.GET("", p.ListMovies)
	g.GET("/:id", p.GetMovie)
	g.GET("/:id/schedules", p.ListSchedules)
	g.GET("/:id/seats", p.SeatLayout)
}
