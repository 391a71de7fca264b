package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/cricket-live-scoring/internal/handler"    // handlers that implement each endpoint
	"github.com/iliyamo/cricket-live-scoring/internal/middleware" // JWT authentication and role enforcement
	"github.com/iliyamo/cricket-live-scoring/internal/model"      // account roles
)

// RegisterRoutes registers routes that do not require authentication:
// liveness at /healthz and, when provided, dependency readiness at /readyz.
func RegisterRoutes(e *echo.Echo, ready *handler.ReadyHandler) {
	e.GET("/healthz", handler.Health)
	if ready != nil {
		e.GET("/readyz", ready.Ready)
	}
}

// RegisterAuth registers all authentication-related routes.  Operations
// that create or exchange tokens live under /v1/auth; /v1/me requires a
// valid access token of any role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)               // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // access token only
	// Logout accepts a refresh token in the body or a bearer token, so it
	// sits outside the JWT middleware.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	e.GET("/v1/me", a.Me,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleScorer, model.RoleViewer, model.RoleAdmin),
	)
}

// RegisterFixtures registers the public fixture catalog.  cache wraps the
// read endpoints; pass nil to serve them uncached.
func RegisterFixtures(e *echo.Echo, f *handler.FixtureHandler, cache echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if cache != nil {
		mw = append(mw, cache)
	}
	e.GET("/v1/fixtures", f.List, mw...)
	e.GET("/v1/fixtures/:id", f.Get, mw...)
}

// RegisterLive exposes the WebSocket score feed.
func RegisterLive(e *echo.Echo, l *handler.LiveHandler) {
	e.GET("/v1/live", l.Serve)
}
