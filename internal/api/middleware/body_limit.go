package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"volunteerhub/pkg/response"
)

// BodyLimit caps request bodies at maxBytes, or at uploadBytes for
// multipart/form-data uploads. A non-positive maxBytes disables the cap.
// Handlers that hit the limit surface it through c.Error.
func BodyLimit(maxBytes, uploadBytes int64) gin.HandlerFunc {
	if uploadBytes < maxBytes {
		uploadBytes = maxBytes
	}
	return func(c *gin.Context) {
		if c.Request.Body != nil && maxBytes > 0 {
			limit := maxBytes
			if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
				limit = uploadBytes
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, ginErr := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(ginErr.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
				return
			}
		}
	}
}
