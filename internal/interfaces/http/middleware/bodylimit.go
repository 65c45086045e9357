package middleware

import (
	"net/http"
	"strings"

	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit caps request bodies. Multipart requests carry file uploads and
// get uploadBytes instead of maxBytes.
func BodyLimit(maxBytes, uploadBytes int64) gin.HandlerFunc {
	if uploadBytes < maxBytes {
		uploadBytes = maxBytes
	}
	return func(c *gin.Context) {
		limit := maxBytes
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = uploadBytes
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodePayloadTooLarge, "Request body exceeds maximum allowed size"))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
