package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/nguyentranbao-ct/swipe-preview/pkg/logger/logctx"
)

const XRequestID = "x-request-id"

const maxRequestIDLen = 64

type requestIDKey struct{}

// RequestID reuses a well-formed incoming x-request-id, or assigns a new
// uuid, and echoes it on the response. The id is put on the echo context,
// the request context and its log fields.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(XRequestID)
			if !validRequestID(id) {
				id = uuid.NewString()
			}

			ctx := context.WithValue(c.Request().Context(), requestIDKey{}, id)
			ctx = log.With(ctx, "request_id", id)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(XRequestID, id)
			c.Response().Header().Set(XRequestID, id)
			return next(c)
		}
	}
}

// GetRequestID returns the id assigned by RequestID, or "" outside it.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(XRequestID).(string); ok {
		return id
	}
	return RequestIDFromContext(c.Request().Context())
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// validRequestID accepts short ids made of letters, digits, '-', '_' and
// '.', so client ids cannot forge log content.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
