package trace

import (
	"context"

	"github.com/google/uuid"
)

// HeaderName is the HTTP header carrying the request id.
const HeaderName = "X-Request-ID"

type requestIDKey struct{}

// NewRequestID generates a new request id.
func NewRequestID() string {
	return uuid.NewString()
}

// FromHeader returns the caller-supplied id if it is a UUID, otherwise a fresh one.
func FromHeader(headerValue string) string {
	if headerValue == "" {
		return NewRequestID()
	}
	if _, err := uuid.Parse(headerValue); err != nil {
		return NewRequestID()
	}
	return headerValue
}

// FromContext 从 context 中获取 request id
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithContext 将 request id 添加到 context 中
func WithContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}
