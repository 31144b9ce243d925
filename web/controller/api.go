package controller

import (
	"net/http"
	"strconv"

	"github.com/apextelemetry/apextelemetry/web/middleware"
	"github.com/apextelemetry/apextelemetry/web/service"

	"github.com/gin-gonic/gin"
)

// APIController serves the JSON API under /panel/api.
type APIController struct {
	BaseController

	sessionService *service.RaceSessionService
}

func NewAPIController(g *gin.RouterGroup, sessions *service.RaceSessionService) *APIController {
	a := &APIController{sessionService: sessions}
	a.initRouter(g)
	return a
}

// checkAPIAuth returns 404 for unauthenticated API requests
// to hide the existence of API endpoints from anonymous callers.
func (a *APIController) checkAPIAuth(c *gin.Context) {
	if _, ok := middleware.GetPrincipal(c); !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Next()
}

func (a *APIController) initRouter(g *gin.RouterGroup) {
	api := g.Group("/panel/api")
	api.Use(a.checkAPIAuth)

	api.GET("/sessions", a.sessions)
	api.GET("/drivers", a.drivers)
	api.GET("/years", a.years)
	api.GET("/driver-races/:name", a.driverRaces)
}

func (a *APIController) sessions(c *gin.Context) {
	list, err := a.sessionService.List(principal(c).UserID)
	jsonObj(c, list, err)
}

// drivers lists the drivers of ?season=YYYY, or of the current season.
func (a *APIController) drivers(c *gin.Context) {
	season := 0
	if raw := c.Query("season"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1950 {
			jsonError(c, "", service.NewValidationError("season", "season must be a year"))
			return
		}
		season = n
	}
	jsonObj(c, a.sessionService.Drivers(c.Request.Context(), season), nil)
}

func (a *APIController) years(c *gin.Context) {
	jsonObj(c, a.sessionService.Seasons(c.Request.Context()), nil)
}

func (a *APIController) driverRaces(c *gin.Context) {
	jsonObj(c, a.sessionService.DriverRaces(c.Request.Context(), c.Param("name")), nil)
}
