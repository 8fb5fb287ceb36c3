package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// requestIDMaxLen bounds caller-supplied IDs before they reach the logs.
const requestIDMaxLen = 64

// RequestID tags every request with an ID, reusing the caller's
// X-Request-ID when it fits within requestIDMaxLen and minting a UUID
// otherwise. The ID is stored under "request_id" for Logger and echoed in
// the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}
