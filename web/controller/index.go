package controller

import (
	"net/http"
	"text/template"

	"github.com/apextelemetry/apextelemetry/config"
	"github.com/apextelemetry/apextelemetry/logger"
	"github.com/apextelemetry/apextelemetry/web/entity"
	"github.com/apextelemetry/apextelemetry/web/middleware"
	"github.com/apextelemetry/apextelemetry/web/service"
	"github.com/apextelemetry/apextelemetry/web/session"

	"github.com/gin-gonic/gin"
)

// IndexController handles the landing page, registration and login.
type IndexController struct {
	BaseController

	userService *service.UserService
}

func NewIndexController(g *gin.RouterGroup, users *service.UserService) *IndexController {
	a := &IndexController{userService: users}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/login", a.loginPage)
	g.POST("/login", a.login)
	g.GET("/register", a.registerPage)
	g.POST("/register", a.register)
	g.GET("/logout", a.logout)
}

// index sends logged-in users to the panel and everyone else to the login page.
func (a *IndexController) index(c *gin.Context) {
	if _, ok := middleware.GetPrincipal(c); ok {
		c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path")+"panel/")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path")+"login")
}

func (a *IndexController) loginPage(c *gin.Context) {
	if _, ok := middleware.GetPrincipal(c); ok {
		c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path")+"panel/")
		return
	}
	html(c, "login.html", "pages.login.title", nil)
}

func (a *IndexController) registerPage(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path")+"panel/")
		return
	}
	html(c, "register.html", "pages.register.title", nil)
}

func (a *IndexController) login(c *gin.Context) {
	var form entity.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}
	if form.Username == "" {
		pureJsonMsg(c, http.StatusBadRequest, false, I18nWeb(c, "pages.login.toasts.emptyUsername"))
		return
	}
	if form.Password == "" {
		pureJsonMsg(c, http.StatusBadRequest, false, I18nWeb(c, "pages.login.toasts.emptyPassword"))
		return
	}

	safeUser := template.HTMLEscapeString(form.Username)
	user, err := a.userService.CheckUser(form.Username, form.Password)
	if err != nil {
		logger.Warningf("failed login for %q from %s", safeUser, getRemoteIp(c))
		jsonError(c, "", err)
		return
	}

	if err := session.SetMaxAge(c, config.GetSessionMaxAge()*60); err != nil {
		logger.Warning("Unable to set session max age:", err)
	}
	if err := session.SetLoginUser(c, user.Id, user.Username); err != nil {
		logger.Warning("Unable to save session:", err)
		jsonError(c, "login", err)
		return
	}

	logger.Infof("%s logged in successfully, Ip Address: %s", safeUser, getRemoteIp(c))
	jsonMsg(c, I18nWeb(c, "pages.login.toasts.successLogin"), nil)
}

func (a *IndexController) register(c *gin.Context) {
	var form entity.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}

	user, err := a.userService.Register(form.Username, form.Email, form.Password, form.ConfirmPassword)
	if err != nil {
		jsonError(c, "register", err)
		return
	}
	logger.Infof("registered user %q from %s", template.HTMLEscapeString(user.Username), getRemoteIp(c))
	jsonMsgObj(c, I18nWeb(c, "pages.register.toasts.success"), user, nil)
}

// logout handles user logout by clearing the session and redirecting to the login page.
func (a *IndexController) logout(c *gin.Context) {
	if p, ok := middleware.GetPrincipal(c); ok {
		logger.Infof("%s logged out successfully", p.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to save session after clearing:", err)
	}
	c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path")+"login")
}
