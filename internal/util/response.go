package util

import (
	"net/http"

	"viksit_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the JSON envelope used by the operational endpoints.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// Render writes an HTML page. Every page receives the current user (if any)
// and the pending flash messages.
func Render(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["currentUser"] = GetUserFromContext(c)
	data["messages"] = PopFlashes(c)
	data["path"] = c.Request.URL.Path
	c.HTML(code, name, data)
}

func BadRequestPage(c *gin.Context, message string) {
	Render(c, http.StatusBadRequest, "error.html", gin.H{
		"title":   "Bad request",
		"message": message,
	})
}

func NotFoundPage(c *gin.Context) {
	Render(c, http.StatusNotFound, "error.html", gin.H{
		"title":   "Page not found",
		"message": "The page you were looking for does not exist.",
	})
}

func InternalErrorPage(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	Render(c, http.StatusInternalServerError, "error.html", gin.H{
		"title":   "Something went wrong",
		"message": "Please try again in a moment.",
	})
}

// RedirectWithFlash queues a message for the next page and redirects with 302.
func RedirectWithFlash(c *gin.Context, level, text, location string) {
	AddFlash(c, level, text)
	c.Redirect(http.StatusFound, location)
}
