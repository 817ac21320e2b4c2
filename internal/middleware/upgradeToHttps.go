package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UpgradeToHttps redirects plaintext HTTP clients to HTTPS. The TLS
// field of the request is useless behind a TLS-terminating reverse
// proxy, so the X-Forwarded-Proto header is what gets checked.
func UpgradeToHttps() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Forwarded-Proto") == "http" {
			c.Redirect(http.StatusMovedPermanently, "https://"+c.Request.Host+c.Request.RequestURI)
			c.Abort()
			return
		}
		c.Next()
	}
}
