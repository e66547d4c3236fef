// Package router maps URL paths onto handlers and applies the
// middleware chain. Catalog reads are open to any authenticated role;
// catalog writes require ADMIN; orders belong to whoever is logged in.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/train-station-reservation/internal/config"
	"github.com/iliyamo/train-station-reservation/internal/handler"
	"github.com/iliyamo/train-station-reservation/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth      *handler.AuthHandler
	Station   *handler.StationHandler
	Route     *handler.RouteHandler
	TrainType *handler.TrainTypeHandler
	Facility  *handler.FacilityHandler
	Train     *handler.TrainHandler
	Crew      *handler.CrewHandler
	Journey   *handler.JourneyHandler
	Order     *handler.OrderHandler
}

// RegisterRoutes attaches all routes to the Echo instance. rdb may be
// nil, in which case the cache and rate-limit middleware pass through.
func RegisterRoutes(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Session endpoints do not require an access token.
	auth := e.Group("/v1/auth", rl)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	v1 := e.Group("/v1", rl, middleware.JWTAuth(cfg.JWTSecret))
	v1.GET("/me", h.Auth.Me)

	read := middleware.RequireRole("ADMIN", "CUSTOMER")
	admin := middleware.RequireRole("ADMIN")

	v1.GET("/stations", h.Station.List, read, cache)
	v1.GET("/stations/:id", h.Station.Get, read, cache)
	v1.POST("/stations", h.Station.Create, admin)
	v1.PUT("/stations/:id", h.Station.Update, admin)
	v1.DELETE("/stations/:id", h.Station.Delete, admin)

	v1.GET("/routes", h.Route.List, read, cache)
	v1.GET("/routes/:id", h.Route.Get, read, cache)
	v1.POST("/routes", h.Route.Create, admin)
	v1.PUT("/routes/:id", h.Route.Update, admin)
	v1.DELETE("/routes/:id", h.Route.Delete, admin)

	v1.GET("/train-types", h.TrainType.List, read, cache)
	v1.GET("/train-types/:id", h.TrainType.Get, read, cache)
	v1.POST("/train-types", h.TrainType.Create, admin)
	v1.PUT("/train-types/:id", h.TrainType.Update, admin)
	v1.DELETE("/train-types/:id", h.TrainType.Delete, admin)

	v1.GET("/facilities", h.Facility.List, read, cache)
	v1.GET("/facilities/:id", h.Facility.Get, read, cache)
	v1.POST("/facilities", h.Facility.Create, admin)
	v1.PUT("/facilities/:id", h.Facility.Update, admin)
	v1.DELETE("/facilities/:id", h.Facility.Delete, admin)

	v1.GET("/trains", h.Train.List, read, cache)
	v1.GET("/trains/:id", h.Train.Get, read, cache)
	v1.POST("/trains", h.Train.Create, admin)
	v1.PUT("/trains/:id", h.Train.Update, admin)
	v1.DELETE("/trains/:id", h.Train.Delete, admin)

	v1.GET("/crews", h.Crew.List, read, cache)
	v1.GET("/crews/:id", h.Crew.Get, read, cache)
	v1.POST("/crews", h.Crew.Create, admin)
	v1.PUT("/crews/:id", h.Crew.Update, admin)
	v1.DELETE("/crews/:id", h.Crew.Delete, admin)

	// Journey reads are the hottest queries; the cache TTL bounds how
	// stale tickets_available can get when caching is enabled.
	v1.GET("/journeys", h.Journey.List, read, cache)
	v1.GET("/journeys/:id", h.Journey.Get, read, cache)
	v1.POST("/journeys", h.Journey.Create, admin)
	v1.PUT("/journeys/:id", h.Journey.Update, admin)
	v1.DELETE("/journeys/:id", h.Journey.Delete, admin)

	// Orders: any authenticated user, always scoped to themselves.
	v1.GET("/orders", h.Order.List, read)
	v1.POST("/orders", h.Order.Create, read)
	v1.GET("/orders/:id", h.Order.Get, read)
	v1.DELETE("/orders/:id", h.Order.Delete, read)
}
