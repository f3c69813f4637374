// Package handler contains the HTTP handlers for the event lifecycle API.
package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
)

var errNoIdentity = errors.New("no authenticated user in context")

// getUserID extracts the authenticated user's id injected by the JWT
// middleware.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := c.Get("user_id").(uint64)
	if !ok || id == 0 {
		return 0, errNoIdentity
	}
	return id, nil
}
