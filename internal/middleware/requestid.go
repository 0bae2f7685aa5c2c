package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
)

// RequestIDConfig controls request-id reuse behavior.
type RequestIDConfig struct {
	// TrustUpstream reuses an incoming X-Request-ID when it is a UUID, as
	// set by a gateway in front of the service.
	TrustUpstream bool
}

// RequestID returns a gin middleware that gives every request a fresh UUID.
// See RequestIDWithConfig.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig returns a gin middleware that assigns request IDs.
//
// The ID is stored in gin.Context, echoed in the X-Request-ID response header
// and attached to every log record of the request via logger.WithContextAttrs.
// Error envelopes written by this package carry it as data.request_id.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := "", false
		if cfg.TrustUpstream {
			id, ok = canonicalRequestID(c.GetHeader(requestIDHeader))
		}
		if !ok {
			id = uuid.NewString()
		}

		c.Set(requestIDContextKey, id)
		c.Header(requestIDHeader, id)

		ctx := logger.WithContextAttrs(c.Request.Context(), slog.String("request_id", id))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// canonicalRequestID accepts only UUIDs and returns their lowercase
// hyphenated form.
func canonicalRequestID(raw string) (string, bool) {
	if raw == "" || len(raw) > 45 {
		return "", false
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// GetRequestID extracts the request ID from the gin.Context.
// Returns an empty string if no request ID is set.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(requestIDContextKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// errorData is the data payload of error envelopes written by middleware.
func errorData(c *gin.Context) any {
	if id := GetRequestID(c); id != "" {
		return gin.H{"request_id": id}
	}
	return nil
}
