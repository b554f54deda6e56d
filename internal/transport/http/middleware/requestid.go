package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/todo-api/internal/requestid"
)

// RequestID keeps an acceptable incoming X-Request-ID and otherwise mints a
// new one. The id goes on the request context and the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestid.Header)
		if !requestid.Acceptable(id) {
			id = requestid.New()
		}

		c.Request = c.Request.WithContext(requestid.WithRequestID(c.Request.Context(), id))
		c.Header(requestid.Header, id)
		c.Next()
	}
}
