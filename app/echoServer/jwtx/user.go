// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// UserID reads the verified identity the auth middleware stored in the echo
// context. Every mutating handler goes through this; a missing identity is
// an Unauthorized condition, never a fallback to some ambient default.
func UserID(c echo.Context) (int64, error) {
	uid, ok := c.Get("user_id").(int64)
	if !ok || uid == 0 {
		return 0, errors.New("no verified user in context")
	}
	return uid, nil
}
