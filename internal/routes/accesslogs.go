package routes

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"premises-access-control/internal/access"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

func AccessLogRoutes(r *gin.RouterGroup, app *App) {

	r.GET("/access-logs", func(c *gin.Context) {
		workday := c.Query("workday_date")
		if workday != "" {
			if _, err := time.Parse(access.WorkdayLayout, workday); err != nil {
				AbortWithError(c, fmt.Errorf("%w: workday_date must be YYYY-MM-DD", ErrInvalidParameter))
				return
			}
		}

		limit, err := queryInt(c, "limit", defaultLogLimit)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if limit < 1 || limit > maxLogLimit {
			AbortWithError(c, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidParameter, maxLogLimit))
			return
		}

		offset, err := queryInt(c, "offset", 0)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if offset < 0 {
			AbortWithError(c, fmt.Errorf("%w: offset must not be negative", ErrInvalidParameter))
			return
		}

		events, err := app.Provider.ListAccessEvents(c.Request.Context(), workday, limit, offset)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"count":  len(events),
			"events": events,
		})
	})
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidParameter, name)
	}
	return n, nil
}
