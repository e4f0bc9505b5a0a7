package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

// RequestIDKey is the context key of the request id.
const RequestIDKey ctxKey = "request_id"

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID ensures each request has an ID in context and response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request id from context.
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(RequestIDKey).(string); ok {
		return s
	}
	return ""
}
