package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (h handlers) authPost() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.auth.StartSession(c)
	}
}

func (h handlers) authDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.auth.ClearSession(c.Writer)
		c.Status(http.StatusOK)
	}
}

// requireAuth protects the administrative API: the site password (or
// its session cookie) is the only accepted credential, share tokens
// never grant admin access.
func (h handlers) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.auth.Enabled() && !h.auth.CheckAccess(c.Request) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Auth required",
			})
			return
		}
		c.Next()
	}
}

func RestrictIPAddresses(ipAddresses []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(ipAddresses) == 0 {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		for _, address := range ipAddresses {
			if strings.Contains(address, clientIP) {
				c.Next()
				return
			}
		}

		c.String(http.StatusUnauthorized, "Unauthorized access")
		c.Abort()
	}
}
