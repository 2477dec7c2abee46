package appcore

import (
	"context"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// GetRequestID extracts the request ID from the context, or "" if absent.
func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok {
		return ""
	}
	return requestID
}

// WithRequestID adds the request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
