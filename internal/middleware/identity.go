package middleware

// identity.go defines helper functions shared across middleware files.
// currentUserID pulls the authenticated user identifier that JWTAuth
// stored in the Echo context; rate-limit keys use it to separate
// authenticated traffic per user.

import (
    "github.com/labstack/echo/v4"
)

// currentUserID returns the user identifier stored by JWTAuth, or
// "anon" when the request is unauthenticated.
func currentUserID(c echo.Context) string {
    if v := c.Get("user_id"); v != nil {
        if s, ok := v.(string); ok && s != "" {
            return s
        }
    }
    if v := c.Get("userID"); v != nil {
        if s, ok := v.(string); ok && s != "" {
            return s
        }
    }
    return "anon"
}
