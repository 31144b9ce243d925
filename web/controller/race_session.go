package controller

import (
	"strconv"

	"github.com/apextelemetry/apextelemetry/telemetry"
	"github.com/apextelemetry/apextelemetry/web/entity"
	"github.com/apextelemetry/apextelemetry/web/service"

	"github.com/gin-gonic/gin"
)

// SessionController handles race session pages and actions.
type SessionController struct {
	sessionService *service.RaceSessionService
}

func NewSessionController(g *gin.RouterGroup, sessions *service.RaceSessionService) *SessionController {
	a := &SessionController{sessionService: sessions}
	a.initRouter(g)
	return a
}

func (a *SessionController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/sessions")

	g.POST("", a.create)
	g.GET("/:id", a.view)
	g.GET("/:id/data", a.data)
	g.POST("/:id/refresh", a.refresh)
	g.POST("/:id/rename", a.rename)
	g.POST("/:id/delete", a.delete)
}

func (a *SessionController) create(c *gin.Context) {
	var form entity.SessionForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, "", service.NewValidationError("form", I18nWeb(c, "pages.login.toasts.invalidFormData")))
		return
	}
	sess, err := a.sessionService.Create(c.Request.Context(), principal(c).UserID, service.SessionInput{
		Name:       form.Name,
		DriverName: form.DriverName,
		RaceDate:   form.RaceDate,
		Laps:       form.Laps.Ptr(),
	})
	jsonMsgObj(c, I18nWeb(c, "pages.session.toasts.created"), sess, err)
}

func (a *SessionController) view(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		pageError(c, err)
		return
	}
	sess, rows, err := a.sessionService.CarData(principal(c).UserID, id)
	if err != nil {
		pageError(c, err)
		return
	}
	html(c, "session_view.html", "pages.session.title", gin.H{
		"session": sess,
		"summary": telemetry.Summarize(rows),
	})
}

// data feeds the charts: one array per metric, index-aligned by lap.
func (a *SessionController) data(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		jsonError(c, "", err)
		return
	}
	_, rows, err := a.sessionService.CarData(principal(c).UserID, id)
	if err != nil {
		jsonError(c, "session data", err)
		return
	}
	jsonObj(c, telemetry.ToSeries(rows), nil)
}

func (a *SessionController) refresh(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		jsonError(c, "", err)
		return
	}
	res, err := a.sessionService.Refresh(c.Request.Context(), principal(c).UserID, id)
	if err != nil {
		jsonError(c, "refresh session", err)
		return
	}
	msg := I18nWeb(c, "pages.session.toasts.refreshed")
	if len(res.PitStops) > 0 {
		msg = I18nWeb(c, "pages.session.toasts.pitStops", "Count=="+strconv.Itoa(len(res.PitStops)))
	}
	jsonMsgObj(c, msg, res, nil)
}

func (a *SessionController) rename(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		jsonError(c, "", err)
		return
	}
	var form entity.RenameForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, "", service.NewValidationError("name", I18nWeb(c, "pages.login.toasts.invalidFormData")))
		return
	}
	sess, err := a.sessionService.Rename(principal(c).UserID, id, form.Name)
	jsonMsgObj(c, I18nWeb(c, "pages.session.toasts.renamed"), sess, err)
}

func (a *SessionController) delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		jsonError(c, "", err)
		return
	}
	err = a.sessionService.Delete(principal(c).UserID, id)
	jsonMsg(c, I18nWeb(c, "pages.session.toasts.deleted"), err)
}
