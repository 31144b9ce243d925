// Package middleware holds the gin middleware of the web server.
package middleware

import (
	"errors"

	"github.com/apextelemetry/apextelemetry/logger"
	"github.com/apextelemetry/apextelemetry/web/entity"
	"github.com/apextelemetry/apextelemetry/web/service"
	"github.com/apextelemetry/apextelemetry/web/session"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// UserLookup resolves the user stored in the login session.
type UserLookup interface {
	Exists(id int) (bool, error)
}

// Identity turns the login session into an entity.Principal on the request context.
// A session whose user no longer exists is cleared.
func Identity(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := session.GetLoginUser(c)
		if u == nil {
			c.Next()
			return
		}
		ok, err := users.Exists(u.Id)
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			logger.Warning("identity lookup failed:", err)
			c.Next()
			return
		}
		if !ok {
			logger.Infof("dropping session of deleted user %d", u.Id)
			if err := session.ClearSession(c); err != nil {
				logger.Warning("clear session failed:", err)
			}
			c.Next()
			return
		}
		c.Set(principalKey, entity.Principal{UserID: u.Id, Username: u.Username})
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller, if any.
func GetPrincipal(c *gin.Context) (entity.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return entity.Principal{}, false
	}
	p, ok := v.(entity.Principal)
	return p, ok
}
