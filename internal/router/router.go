// Package router registers HTTP routes and their middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/movie-grid/internal/handler"
	"github.com/iliyamo/movie-grid/internal/middleware"
	"github.com/iliyamo/movie-grid/internal/model"
)

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers account endpoints.  Register, login, refresh and
// logout live under /v1/auth and need no session; /v1/me needs one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RolePlayer))
}

// GameDeps carries the handlers and the Redis-backed middleware for the
// player routes.  Cache and RateLimit may be pass-through.
type GameDeps struct {
	Game      *handler.GameHandler
	Search    *handler.SearchHandler
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// RegisterGame registers the player endpoints under /v1.  Every route
// requires a PLAYER token; guesses are rate limited and search results
// are cached.
func RegisterGame(e *echo.Echo, d GameDeps, jwtSecret string) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RolePlayer),
	)
	g.GET("/today", d.Game.Today)
	g.POST("/guesses", d.Game.SubmitGuess, d.RateLimit)
	g.GET("/movies/search", d.Search.Search, d.Cache)
}
