// Package controller provides the HTTP handlers of the telemetry dashboard.
package controller

import (
	"net/http"

	"github.com/apextelemetry/apextelemetry/web/entity"
	"github.com/apextelemetry/apextelemetry/web/locale"
	"github.com/apextelemetry/apextelemetry/web/middleware"

	"github.com/gin-gonic/gin"
)

// BaseController provides common functionality for all controllers, including authentication checks.
type BaseController struct{}

// checkLogin is a middleware that verifies user authentication and handles unauthorized access.
func (a *BaseController) checkLogin(c *gin.Context) {
	if _, ok := middleware.GetPrincipal(c); !ok {
		if isAjax(c) || c.Request.Method != http.MethodGet {
			pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "pages.login.loginAgain"))
		} else {
			c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path")+"login")
		}
		c.Abort()
	} else {
		c.Next()
	}
}

// principal returns the caller. Only valid behind checkLogin.
func principal(c *gin.Context) entity.Principal {
	p, _ := middleware.GetPrincipal(c)
	return p
}

// I18nWeb retrieves an internationalized message for the web interface based on the current locale.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.I18nWeb(c, name, params...)
}
