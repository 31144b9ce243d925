package controller

import (
	"github.com/apextelemetry/apextelemetry/web/entity"
	"github.com/apextelemetry/apextelemetry/web/service"

	"github.com/gin-gonic/gin"
)

// ComparisonController builds, saves and shows two-driver comparisons.
type ComparisonController struct {
	comparisonService *service.ComparisonService
}

func NewComparisonController(g *gin.RouterGroup, comparisons *service.ComparisonService) *ComparisonController {
	a := &ComparisonController{comparisonService: comparisons}
	a.initRouter(g)
	return a
}

func (a *ComparisonController) initRouter(g *gin.RouterGroup) {
	g.POST("/compare", a.build)

	cg := g.Group("/comparisons")
	cg.POST("", a.save)
	cg.GET("/:id", a.view)
	cg.GET("/:id/data", a.data)
	cg.POST("/:id/delete", a.delete)
}

func bindCompare(c *gin.Context) (service.ComparisonInput, error) {
	var form entity.CompareForm
	if err := c.ShouldBind(&form); err != nil {
		return service.ComparisonInput{}, service.NewValidationError("form", I18nWeb(c, "pages.login.toasts.invalidFormData"))
	}
	return service.ComparisonInput{Driver1: form.Driver1, Driver2: form.Driver2, RaceDate: form.RaceDate}, nil
}

// build returns an unsaved comparison for the charts.
func (a *ComparisonController) build(c *gin.Context) {
	in, err := bindCompare(c)
	if err != nil {
		jsonError(c, "", err)
		return
	}
	res, err := a.comparisonService.Build(c.Request.Context(), in)
	jsonObj(c, res, err)
}

func (a *ComparisonController) save(c *gin.Context) {
	in, err := bindCompare(c)
	if err != nil {
		jsonError(c, "", err)
		return
	}
	cmp, err := a.comparisonService.Save(c.Request.Context(), principal(c).UserID, in)
	jsonMsgObj(c, I18nWeb(c, "pages.compare.toasts.saved"), cmp, err)
}

func (a *ComparisonController) view(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		pageError(c, err)
		return
	}
	res, err := a.comparisonService.Get(principal(c).UserID, id)
	if err != nil {
		pageError(c, err)
		return
	}
	html(c, "comparison_view.html", "pages.compare.title", gin.H{"comparison": res})
}

func (a *ComparisonController) data(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		jsonError(c, "", err)
		return
	}
	res, err := a.comparisonService.Get(principal(c).UserID, id)
	jsonObj(c, res, err)
}

func (a *ComparisonController) delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		jsonError(c, "", err)
		return
	}
	err = a.comparisonService.Delete(principal(c).UserID, id)
	jsonMsg(c, I18nWeb(c, "pages.compare.toasts.deleted"), err)
}
