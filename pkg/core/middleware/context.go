package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys this domain's query layer carries through a request:
// who asked (for audit attribution on any future write path) and which
// request it was (for correlating a query to its log lines and spans).
type contextKey string

const (
	// UserIDKey is the context key for the requesting user's identifier,
	// read from X-User-Id.
	UserIDKey contextKey = "user_id"
	// RequestIDKey is the context key for the per-request correlation
	// identifier, read from X-Request-Id or generated if absent.
	RequestIDKey contextKey = "request_id"
)

// WithUserID returns a new context with the user ID set.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithRequestID returns a new context with the request ID set.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetUserID extracts the user ID from the context.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(UserIDKey).(string)
	return v, ok
}

// GetRequestID extracts the request ID from the context.
func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(RequestIDKey).(string)
	return v, ok
}

// RequestContext is Echo middleware that extracts X-User-Id (if present)
// and X-Request-Id (generating one if absent) into the request context,
// so query handlers can attribute and correlate reads.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			if userID := c.Request().Header.Get("X-User-Id"); userID != "" {
				ctx = WithUserID(ctx, userID)
			}

			requestID := c.Request().Header.Get("X-Request-Id")
			if requestID == "" {
				requestID = uuid.New().String()
			}
			ctx = WithRequestID(ctx, requestID)
			c.Response().Header().Set("X-Request-Id", requestID)

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
