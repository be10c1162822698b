package middleware

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"
	"github.com/simp-lee/logger"
)

const requestIDHeader = "X-Request-ID"

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// RequestID assigns a request id to every request. The id is echoed in the
// X-Request-ID header, kept in the gin context and attached to the request
// context so that context-aware log records carry it.
//
// When trustUpstream is set a well-formed incoming X-Request-ID is reused;
// anything else is replaced by a fresh id.
func RequestID(trustUpstream bool) gin.HandlerFunc {
	opts := []ginx.RequestIDOption{
		ginx.WithRequestIDHeader(requestIDHeader),
		ginx.WithContextInjector(func(ctx context.Context, id string) context.Context {
			return logger.WithContextAttrs(ctx, slog.String("request_id", id))
		}),
	}
	if !trustUpstream {
		opts = append(opts, ginx.WithIgnoreIncoming())
	}
	mw := ginx.NewChain().Use(ginx.RequestID(opts...)).Build()

	return func(c *gin.Context) {
		if trustUpstream && !isValidRequestID(c.GetHeader(requestIDHeader)) {
			c.Request.Header.Del(requestIDHeader)
		}
		mw(c)
	}
}

func isValidRequestID(id string) bool {
	return requestIDPattern.MatchString(id)
}

// GetRequestID returns the request id of c, or "" outside RequestID.
func GetRequestID(c *gin.Context) string {
	id, _ := ginx.GetRequestID(c)
	return id
}
