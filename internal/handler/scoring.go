package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cricket-live-scoring/internal/middleware"
	"github.com/iliyamo/cricket-live-scoring/internal/scoring"
)

// SummaryReader returns the cached summary of a match.  A miss is
// reported with an error; the handler then falls back to the engine.
type SummaryReader interface {
	ReadMatchSummary(ctx context.Context, matchID uint64) (*scoring.Summary, error)
}

// MatchHandler exposes the scoring engine over HTTP.  Every mutating route
// expects JWTAuth to have run so the scorer can be identified.
type MatchHandler struct {
	Scoring   *scoring.Service
	Lookup    scoring.FixtureLookup
	Summaries SummaryReader // optional Redis read-through
}

func NewMatchHandler(svc *scoring.Service, lookup scoring.FixtureLookup, summaries SummaryReader) *MatchHandler {
	if svc == nil || lookup == nil {
		panic("nil dependency passed to NewMatchHandler")
	}
	return &MatchHandler{Scoring: svc, Lookup: lookup, Summaries: summaries}
}

// ----- DTOs -----

type startReq struct {
	BattingFirst string `json:"battingFirst"`
}
type bowlerReq struct {
	Name        string `json:"name"`
	ShirtNumber string `json:"shirtNumber"`
}
type statusReq struct {
	Status string `json:"status"`
}

// matchID parses the :id path parameter.
func matchID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func badMatchID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid match id"})
}

// writeScoringError translates engine failures into HTTP responses.
func writeScoringError(c echo.Context, err error) error {
	var se *scoring.Error
	if !errors.As(err, &se) {
		c.Logger().Errorf("scoring: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	status := http.StatusInternalServerError
	switch se.Kind {
	case scoring.KindNotFound:
		status = http.StatusNotFound
	case scoring.KindInvalidOperation:
		status = http.StatusBadRequest
	case scoring.KindPreconditionFailed:
		status = http.StatusConflict
	}
	return c.JSON(status, echo.Map{"error": se.Msg, "kind": se.Kind, "op": se.Op})
}

// Start opens a scoring session for a fixture.  Starting an already
// started match returns the existing session with 200.
func (h *MatchHandler) Start(c echo.Context) error {
	id, ok := matchID(c)
	if !ok {
		return badMatchID(c)
	}
	var req startReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var scorer scoring.Scorer
	if u, ok := middleware.CurrentUser(c); ok {
		scorer = scoring.Scorer{ID: strconv.FormatUint(u.ID, 10), Name: u.Name}
	}
	v, created, err := h.Scoring.Start(c.Request().Context(), scoring.StartInput{
		MatchID:      id,
		Scorer:       scorer,
		BattingFirst: strings.TrimSpace(req.BattingFirst),
	}, h.Lookup)
	if err != nil {
		return writeScoringError(c, err)
	}
	if created {
		return c.JSON(http.StatusCreated, v)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *MatchHandler) SetBatsmen(c echo.Context) error {
	id, ok := matchID(c)
	if !ok {
		return badMatchID(c)
	}
	var req scoring.BatsmenInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	v, err := h.Scoring.SetBatsmen(c.Request().Context(), id, req)
	if err != nil {
		return writeScoringError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *MatchHandler) SetBowler(c echo.Context) error {
	id, ok := matchID(c)
	if !ok {
		return badMatchID(c)
	}
	var req bowlerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	v, err := h.Scoring.SetBowler(c.Request().Context(), id, req.Name, strings.TrimSpace(req.ShirtNumber))
	if err != nil {
		return writeScoringError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *MatchHandler) SwapStrike(c echo.Context) error {
	id, ok := matchID(c)
	if !ok {
		return badMatchID(c)
	}
	v, err := h.Scoring.SwapStrike(c.Request().Context(), id)
	if err != nil {
		return writeScoringError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *MatchHandler) NewBatsman(c echo.Context) error {
	id, ok := matchID(c)
	if !ok {
		return badMatchID(c)
	}
	var req scoring.NewBatsmanInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	v, err := h.Scoring.NewBatsman(c.Request().Context(), id, req)
	if err != nil {
		return writeScoringError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// RecordBall applies one delivery and returns the resolved ball with the
// updated session.
func (h *MatchHandler) RecordBall(c echo.Context) error {
	id, ok := matchID(c)
	if !ok {
		return badMatchID(c)
	}
	var req scoring.BallInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.OverriddenBy == "" && req.Source == scoring.SourceCamera {
		// A scorer confirming a camera call is recorded as the override.
		if u, ok := middleware.CurrentUser(c); ok {
			req.OverriddenBy = strconv.FormatUint(u.ID, 10)
		}
	}
	res, err := h.Scoring.RecordBall(c.Request().Context(), id, req)
	if err != nil {
		return writeScoringError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *MatchHandler) SwitchInnings(c echo.Context) error {
	id, ok := matchID(c)
	if !ok {
		return badMatchID(c)
	}
	v, err := h.Scoring.SwitchInnings(c.Request().Context(), id)
	if err != nil {
		return writeScoringError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *MatchHandler) SetStatus(c echo.Context) error {
	id, ok := matchID(c)
	if !ok {
		return badMatchID(c)
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	v, err := h.Scoring.SetStatus(c.Request().Context(), id, strings.ToLower(strings.TrimSpace(req.Status)))
	if err != nil {
		return writeScoringError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *MatchHandler) Undo(c echo.Context) error {
	id, ok := matchID(c)
	if !ok {
		return badMatchID(c)
	}
	res, err := h.Scoring.Undo(c.Request().Context(), id)
	if err != nil {
		return writeScoringError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// GetSession returns the full session of a match.
func (h *MatchHandler) GetSession(c echo.Context) error {
	id, ok := matchID(c)
	if !ok {
		return badMatchID(c)
	}
	v, found := h.Scoring.Get(id)
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "match not started"})
	}
	return c.JSON(http.StatusOK, v)
}

// List returns one summary per started match, optionally filtered by
// ?status=live|paused|completed.
func (h *MatchHandler) List(c echo.Context) error {
	items := h.Scoring.List()
	if raw := strings.ToLower(strings.TrimSpace(c.QueryParam("status"))); raw != "" {
		st, ok := scoring.ParseStatus(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		filtered := items[:0]
		for _, s := range items {
			if s.Status == st {
				filtered = append(filtered, s)
			}
		}
		items = filtered
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Summary serves the headline score.  The Redis copy is preferred so that
// scoreboards keep working for matches held by another instance; the
// engine is the fallback.
func (h *MatchHandler) Summary(c echo.Context) error {
	id, ok := matchID(c)
	if !ok {
		return badMatchID(c)
	}
	if h.Summaries != nil {
		s, err := h.Summaries.ReadMatchSummary(c.Request().Context(), id)
		if err == nil {
			return c.JSON(http.StatusOK, s)
		}
		c.Logger().Debugf("summary cache miss for match %d: %v", id, err)
	}
	v, found := h.Scoring.Get(id)
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "match not started"})
	}
	return c.JSON(http.StatusOK, v.Summary())
}
