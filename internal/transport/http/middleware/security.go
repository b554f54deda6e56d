package middleware

import "github.com/gin-gonic/gin"

// The only HTML this API serves is the password reset form, which posts
// back to itself and needs inline styles.
const contentSecurityPolicy = "default-src 'none'; style-src 'unsafe-inline'; form-action 'self'; frame-ancestors 'none'"

// Security sets common HTTP security headers on every response. HSTS is
// only sent when hsts is true, so local plain-HTTP runs are not pinned.
func Security(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		// Responses carry session tokens and reset links.
		h.Set("Cache-Control", "no-store")
		if hsts {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}
		c.Next()
	}
}
