package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cricket-live-scoring/internal/handler"
	"github.com/iliyamo/cricket-live-scoring/internal/middleware"
	"github.com/iliyamo/cricket-live-scoring/internal/model"
)

// RegisterMatches registers the scoring API.  Reads are public so that
// scoreboards can poll without an account.  Every mutation requires a valid
// JWT with the SCORER or ADMIN role and passes through limiter, which may
// be nil.
func RegisterMatches(e *echo.Echo, m *handler.MatchHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.GET("/v1/matches", m.List)
	e.GET("/v1/matches/:id/session", m.GetSession)
	e.GET("/v1/matches/:id/summary", m.Summary)

	// JWT runs before the limiter so buckets can be keyed per scorer.
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleScorer, model.RoleAdmin),
	}
	if limiter != nil {
		mw = append(mw, limiter)
	}
	g := e.Group("/v1/matches/:id", mw...)
	g.POST("/start", m.Start)
	g.PUT("/batsmen", m.SetBatsmen)
	g.PUT("/bowler", m.SetBowler)
	g.POST("/swap-strike", m.SwapStrike)
	g.POST("/new-batsman", m.NewBatsman)
	g.POST("/balls", m.RecordBall)
	g.POST("/switch-innings", m.SwitchInnings)
	g.PUT("/status", m.SetStatus)
	g.POST("/undo", m.Undo)
}
