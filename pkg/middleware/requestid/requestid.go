// Package requestid tags every request with a correlation id so the log
// lines of a single API call can be tied together across middleware,
// handlers and services.
package requestid

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header is the wire header the correlation id travels on.
const Header = "X-Request-ID"

const ctxKey = "requestID"

// New returns middleware that reuses the caller-supplied X-Request-ID when
// present or mints a fresh UUID, stores it in the context and echoes it on
// the response so clients can quote it in bug reports.
func New() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(Header))
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(ctxKey, id)
		c.Writer.Header().Set(Header, id)

		c.Next()
	}
}

// FromContext returns the correlation id for the current request, or an
// empty string when the middleware did not run.
func FromContext(c *gin.Context) string {
	if v, ok := c.Get(ctxKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
