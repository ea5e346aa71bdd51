package http

import (
	"context"
	"errors"
)

type contextKey string

const (
	userIDKey    contextKey = "user-id"
	requestIDKey contextKey = "request-id"
)

var errNoPrincipal = errors.New("no authenticated principal in context")

// GetUserIDFromContext extracts the authenticated principal set by the
// auth middleware.
func GetUserIDFromContext(ctx context.Context) (int32, error) {
	userID, ok := ctx.Value(userIDKey).(int32)
	if !ok {
		return 0, errNoPrincipal
	}
	return userID, nil
}

// GetRequestIDFromContext returns the request ID set by the middleware,
// or the empty string.
func GetRequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}
