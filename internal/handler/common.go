package handler // handler defines http handlers

import (
    "errors"  // errors provides sentinel values used in getUserID
    "net/http"
    "strconv" // strconv converts strings to numeric types

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/homesolutions/marketplace/internal/lifecycle"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id") // fetch user_id from context
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64: // JWT numeric claims decode as float64
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || n == 0 {
        return 0, false
    }
    return n, true
}

// lifecycleError maps the lifecycle engine's typed errors onto HTTP
// responses: validation -> 400, missing resource -> 404, violated
// precondition -> 409.  Anything else is a 500 with a generic message.
func lifecycleError(c echo.Context, err error) error {
    var verr *lifecycle.ValidationError
    if errors.As(err, &verr) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error()})
    }
    var nferr *lifecycle.NotFoundError
    if errors.As(err, &nferr) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": nferr.Error()})
    }
    var cerr *lifecycle.ConflictError
    if errors.As(err, &cerr) {
        return c.JSON(http.StatusConflict, echo.Map{"error": cerr.Error()})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
