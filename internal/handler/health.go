package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health is a simple liveness endpoint used by load balancers.  It returns
// a plain text "ok" with 200 as long as the process is serving.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Check probes one dependency.
type Check func(ctx context.Context) error

// ReadyHandler reports dependency health and live feed counters.
type ReadyHandler struct {
	Checks  map[string]Check
	Metrics func() map[string]int64 // optional
}

// Ready runs every check with a short timeout.  Any failure turns the
// response into 503 so orchestrators stop routing traffic here.
func (h *ReadyHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.Checks))
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	body := echo.Map{"checks": checks}
	if h.Metrics != nil {
		body["live"] = h.Metrics()
	}
	return c.JSON(status, body)
}
