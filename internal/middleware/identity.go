package middleware

// identity.go defines the context keys JWTAuth fills in and the helpers
// that read them back for handlers and the rate limiter.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxName   = "name"
)

// User is the authenticated caller.
type User struct {
	ID   uint64
	Role string
	Name string
}

// CurrentUser returns the caller stored by JWTAuth.  ok is false on
// unauthenticated routes.
func CurrentUser(c echo.Context) (User, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	if !ok || id == 0 {
		return User{}, false
	}
	role, _ := c.Get(ctxRole).(string)
	name, _ := c.Get(ctxName).(string)
	return User{ID: id, Role: role, Name: name}, true
}

// userKey identifies the caller in rate limit keys; "anon" when nobody is
// authenticated.
func userKey(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return strconv.FormatUint(u.ID, 10)
	}
	return "anon"
}
