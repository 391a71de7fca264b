package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cricket-live-scoring/internal/model"
	"github.com/iliyamo/cricket-live-scoring/internal/repository"
)

// FixtureReader is the read side of the fixture catalog.
type FixtureReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Fixture, error)
	List(ctx context.Context, f repository.FixtureFilter) ([]model.Fixture, error)
}

// FixtureHandler serves the public fixture catalog.
type FixtureHandler struct {
	Fixtures FixtureReader
}

func NewFixtureHandler(f FixtureReader) *FixtureHandler {
	return &FixtureHandler{Fixtures: f}
}

// List supports ?competition=, ?team=, ?from=, ?to= (RFC3339 or
// YYYY-MM-DD), ?limit= and ?offset=.
func (h *FixtureHandler) List(c echo.Context) error {
	f := repository.FixtureFilter{
		Competition: strings.TrimSpace(c.QueryParam("competition")),
		Team:        strings.TrimSpace(c.QueryParam("team")),
	}
	var ok bool
	if f.From, ok = parseDay(c.QueryParam("from")); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from"})
	}
	if f.To, ok = parseDay(c.QueryParam("to")); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to"})
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		f.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offset"})
		}
		f.Offset = n
	}

	items, err := h.Fixtures.List(c.Request().Context(), f)
	if err != nil {
		c.Logger().Errorf("list fixtures: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *FixtureHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid fixture id"})
	}
	f, err := h.Fixtures.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrFixtureNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "fixture not found"})
	}
	if err != nil {
		c.Logger().Errorf("get fixture %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, f)
}

// parseDay accepts an empty value, an RFC3339 timestamp or a bare date.
func parseDay(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true
	}
	return time.Time{}, false
}
