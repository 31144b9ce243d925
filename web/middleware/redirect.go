package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RedirectMiddleware maps the old dashboard paths onto the panel.
func RedirectMiddleware(basePath string) gin.HandlerFunc {
	redirects := map[string]string{
		"dashboard":   "panel/",
		"session/new": "panel/sessions/new",
		"session/":    "panel/sessions/",
		"compare":     "panel/compare",
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for from, to := range redirects {
			from, to = basePath+from, basePath+to

			if path == from || (strings.HasSuffix(from, "/") && strings.HasPrefix(path, from)) {
				newPath := to + path[len(from):]

				c.Redirect(http.StatusMovedPermanently, newPath)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
