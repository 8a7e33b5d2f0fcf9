package routes

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

type errorStruct struct {
	Succeed bool     `json:"success"`
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Code    []string `json:"code,omitempty"`
}

// ErrorHandler turns errors added to the gin context into a uniform error
// response. Clients that accept text/html get the error page, everyone else
// gets JSON.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		statusCode := GetErrorStatus(err)
		errorInfo := GetErrorInfo(err)

		logAttrs := []any{
			"error", err,
			"status", statusCode,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		}
		if statusCode >= 500 {
			slog.Error("Request failed", logAttrs...)
		} else {
			slog.Warn("Request rejected", logAttrs...)
		}

		if c.Writer.Written() {
			return
		}

		response := errorStruct{
			Status:  "error",
			Message: errorInfo.Message,
		}
		// Every error on the chain contributes its stop codes.
		for _, ginErr := range c.Errors {
			response.Code = append(response.Code, GetErrorInfo(ginErr.Err).StopCodes...)
		}

		if strings.Contains(c.GetHeader("Accept"), "text/html") {
			c.HTML(statusCode, "error.html.tmpl", response)
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(statusCode, response)
	}
}

// AbortWithError records err for the ErrorHandler middleware and stops the
// handler chain with the status mapped for it.
func AbortWithError(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
	c.Status(GetErrorStatus(err))
}

// AbortWithHTTPError aborts with an explicit status, message and stop codes.
func AbortWithHTTPError(c *gin.Context, statusCode int, err error, message string, stopCodes ...string) {
	c.Error(NewHTTPError(statusCode, err, message, stopCodes...))
	c.Abort()
	c.Status(statusCode)
}
