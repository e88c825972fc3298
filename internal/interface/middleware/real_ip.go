package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// realIPKey is the context key under which the resolved client IP is stored.
const realIPKey = "real_ip"

// RealIP resolves the client IP once per request and stores it in the Gin
// context under "real_ip". Resolution order:
// 1) CF-Connecting-IP (Cloudflare)
// 2) X-Forwarded-For (left-most entry)
// 3) c.ClientIP() fallback
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
			if ip := net.ParseIP(cf); ip != nil {
				c.Set(realIPKey, ip.String())
				c.Next()
				return
			}
		}
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.Split(xff, ",")[0])
			if ip := net.ParseIP(first); ip != nil {
				c.Set(realIPKey, ip.String())
				c.Next()
				return
			}
		}
		c.Set(realIPKey, c.ClientIP())
		c.Next()
	}
}

// ipFromCtx returns the IP stored by RealIP, or c.ClientIP() when the
// middleware did not run.
func ipFromCtx(c *gin.Context) string {
	if v, ok := c.Get(realIPKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return c.ClientIP()
}
