package controller

import (
	"github.com/apextelemetry/apextelemetry/telemetry"
	"github.com/apextelemetry/apextelemetry/web/service"

	"github.com/gin-gonic/gin"
)

// Services bundles the domain services the controllers call.
type Services struct {
	Users       *service.UserService
	Sessions    *service.RaceSessionService
	Comparisons *service.ComparisonService
}

// PanelController serves the logged-in pages under /panel.
type PanelController struct {
	BaseController

	services Services

	sessionController    *SessionController
	accountController    *AccountController
	comparisonController *ComparisonController
}

func NewPanelController(g *gin.RouterGroup, services Services) *PanelController {
	a := &PanelController{services: services}
	a.initRouter(g)
	return a
}

func (a *PanelController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/panel")
	g.Use(a.checkLogin)

	g.GET("/", a.index)
	g.GET("/sessions/new", a.newSession)
	g.GET("/account", a.account)
	g.GET("/compare", a.compare)

	a.sessionController = NewSessionController(g, a.services.Sessions)
	a.accountController = NewAccountController(g, a.services.Users)
	a.comparisonController = NewComparisonController(g, a.services.Comparisons)
}

// index is the dashboard: the caller's sessions and saved comparisons.
func (a *PanelController) index(c *gin.Context) {
	p := principal(c)
	sessions, err := a.services.Sessions.List(p.UserID)
	if err != nil {
		pageError(c, err)
		return
	}
	comparisons, err := a.services.Comparisons.List(p.UserID)
	if err != nil {
		pageError(c, err)
		return
	}
	html(c, "dashboard.html", "pages.dashboard.title", gin.H{
		"sessions":    sessions,
		"comparisons": comparisons,
	})
}

func (a *PanelController) newSession(c *gin.Context) {
	html(c, "session_new.html", "pages.sessionNew.title", gin.H{
		"drivers":     a.services.Sessions.Drivers(c.Request.Context(), 0),
		"defaultLaps": telemetry.DefaultLaps,
		"maxLaps":     telemetry.MaxLaps,
	})
}

func (a *PanelController) account(c *gin.Context) {
	user, err := a.services.Users.GetUser(principal(c).UserID)
	if err != nil {
		pageError(c, err)
		return
	}
	html(c, "account.html", "pages.account.title", gin.H{"user": user})
}

func (a *PanelController) compare(c *gin.Context) {
	html(c, "compare.html", "pages.compare.title", gin.H{
		"drivers": a.services.Sessions.Drivers(c.Request.Context(), 0),
	})
}
