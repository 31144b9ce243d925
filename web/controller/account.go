package controller

import (
	"github.com/apextelemetry/apextelemetry/logger"
	"github.com/apextelemetry/apextelemetry/web/entity"
	"github.com/apextelemetry/apextelemetry/web/service"
	"github.com/apextelemetry/apextelemetry/web/session"

	"github.com/gin-gonic/gin"
)

// AccountController handles password changes and account deletion.
type AccountController struct {
	userService *service.UserService
}

func NewAccountController(g *gin.RouterGroup, users *service.UserService) *AccountController {
	a := &AccountController{userService: users}
	a.initRouter(g)
	return a
}

func (a *AccountController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/account")

	g.POST("/password", a.changePassword)
	g.POST("/delete", a.deleteAccount)
}

func (a *AccountController) changePassword(c *gin.Context) {
	var form entity.ChangePasswordForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, "", service.NewValidationError("form", I18nWeb(c, "pages.login.toasts.invalidFormData")))
		return
	}
	p := principal(c)
	err := a.userService.ChangePassword(p.UserID, form.CurrentPassword, form.NewPassword, form.ConfirmPassword)
	if err == nil {
		logger.Infof("%s changed their password", p.Username)
	}
	jsonMsg(c, I18nWeb(c, "pages.account.toasts.passwordChanged"), err)
}

func (a *AccountController) deleteAccount(c *gin.Context) {
	var form entity.DeleteAccountForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, "", service.NewValidationError("confirmation", I18nWeb(c, "pages.login.toasts.invalidFormData")))
		return
	}
	p := principal(c)
	if err := a.userService.DeleteAccount(p.UserID, form.Confirmation); err != nil {
		jsonError(c, "delete account", err)
		return
	}
	logger.Infof("%s deleted their account", p.Username)
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to save session after clearing:", err)
	}
	jsonMsg(c, I18nWeb(c, "pages.account.toasts.deleted"), nil)
}
