package routes

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"premises-access-control/internal/access"
)

type scanRequest struct {
	Code       string `json:"code" form:"code"`
	AccessType string `json:"access_type" form:"access_type"`
}

type scanResponse struct {
	Granted bool          `json:"access_granted"`
	Message string        `json:"message"`
	Event   *access.Event `json:"event"`
}

func ScanRoutes(r *gin.RouterGroup, app *App) {

	// Scan with the raw credential code, used by readers that decode the
	// QR artifact themselves.
	r.POST("/scan", func(c *gin.Context) {
		var req scanRequest
		if err := c.ShouldBind(&req); err != nil {
			AbortWithError(c, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
			return
		}
		if req.Code == "" {
			AbortWithError(c, fmt.Errorf("%w: code", ErrMissingParameter))
			return
		}

		doScan(c, app, req.Code, req.AccessType)
	})

	// Scan with an uploaded artifact carrying the credential code as its
	// payload. The access type rides along as a form field.
	r.POST("/scan/image", func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: file", ErrMissingParameter))
			return
		}

		f, err := file.Open()
		if err != nil {
			AbortWithError(c, fmt.Errorf("opening upload: %w", err))
			return
		}
		defer f.Close()

		code, err := app.Decoder.Decode(f)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		doScan(c, app, code, c.PostForm("access_type"))
	})
}

func doScan(c *gin.Context, app *App, code, accessType string) {
	typ, err := access.ParseType(accessType)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	event, err := app.Scanner.Scan(c.Request.Context(), code, typ, time.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, scanResponse{
		Granted: true,
		Message: fmt.Sprintf("Access %s registered successfully", typ),
		Event:   event,
	})
}
