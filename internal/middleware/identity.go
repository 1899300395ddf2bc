package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	ContextPlayerID = "player_id"
	ContextRole     = "role"
)

// PlayerID returns the authenticated player's id, or 0 when the request
// carries no verified identity.
func PlayerID(c echo.Context) uint64 {
	if id, ok := c.Get(ContextPlayerID).(uint64); ok {
		return id
	}
	return 0
}

// identityKey labels a request for rate limiting and logs.
func identityKey(c echo.Context) string {
	if id := PlayerID(c); id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
