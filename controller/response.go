package controller

import (
	"context"
	"net/http"
	"strconv"

	"smarthotel/apperror"
	"smarthotel/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestContext detaches services from gin while keeping cancellation and
// the request id.
func requestContext(c *gin.Context) context.Context {
	return logger.WithRequestID(c.Request.Context(), c.GetString(logger.RequestIDKey))
}

// respondError writes {"success": false, "error": msg}. Store and upstream
// failures are logged; their details never reach the client.
func respondError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindDependency || appErr.Kind == apperror.KindInternal {
		logger.Error(c, appErr.Message, appErr.Err,
			zap.String("path", c.FullPath()),
			zap.String("kind", appErr.Kind.String()))
	}
	c.JSON(appErr.Status(), gin.H{
		"success": false,
		"error":   appErr.Message,
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
