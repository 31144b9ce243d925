package controller

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/apextelemetry/apextelemetry/config"
	"github.com/apextelemetry/apextelemetry/logger"
	"github.com/apextelemetry/apextelemetry/web/entity"
	"github.com/apextelemetry/apextelemetry/web/middleware"
	"github.com/apextelemetry/apextelemetry/web/service"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return strings.TrimSpace(ips[0])
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// jsonMsg sends a JSON response with a message and error status.
func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

// jsonObj sends a JSON response with an object and error status.
func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

// jsonMsgObj sends a JSON response with a message, object, and error status.
// Errors are mapped to a status code by errorStatus.
func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	if err != nil {
		jsonError(c, msg, err)
		return
	}
	c.JSON(http.StatusOK, entity.Msg{
		Success: true,
		Msg:     msg,
		Obj:     obj,
	})
}

// jsonError writes the failure envelope. Internal error details stay in the log.
func jsonError(c *gin.Context, msg string, err error) {
	status := errorStatus(err)
	m := entity.Msg{Success: false}

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		m.Msg = verr.Message
		m.Obj = gin.H{"field": verr.Field}
	case errors.Is(err, service.ErrInvalidCredentials):
		m.Msg = I18nWeb(c, "pages.login.toasts.wrongUsernameOrPassword")
	case errors.Is(err, service.ErrNotFound):
		m.Msg = I18nWeb(c, "notFound")
	default:
		m.Msg = strings.TrimSpace(msg + " " + I18nWeb(c, "fail"))
		logger.Error(msg+" failed:", err)
	}
	c.JSON(status, m)
}

func errorStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case service.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// pureJsonMsg sends a pure JSON message response with custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// html renders an HTML template with the provided data and title.
func html(c *gin.Context, name string, title string, data gin.H) {
	htmlStatus(c, http.StatusOK, name, title, data)
}

func htmlStatus(c *gin.Context, status int, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["request_uri"] = c.Request.RequestURI
	data["base_path"] = c.GetString("base_path")
	if p, ok := middleware.GetPrincipal(c); ok {
		data["principal"] = p
	}
	c.HTML(status, name, getContext(data))
}

// pageError renders the error page for a failed page request.
func pageError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("render page failed:", err)
	}
	htmlStatus(c, status, "error.html", "pages.error.title", gin.H{"status": status})
	c.Abort()
}

// getContext adds version and other context data to the provided gin.H.
func getContext(h gin.H) gin.H {
	a := gin.H{
		"cur_ver": config.GetVersion(),
		"app":     config.GetName(),
	}
	for key, value := range h {
		a[key] = value
	}
	return a
}

// isAjax checks if the request is an AJAX request.
func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

// idParam parses the :id path segment. Anything unparsable is a missing record.
func idParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, service.ErrNotFound
	}
	return id, nil
}
