package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"premises-access-control/internal/report"
)

func ReportRoutes(r *gin.RouterGroup, app *App) {

	r.GET("/reports/weekly", func(c *gin.Context) {
		weekly, err := app.Aggregator.Aggregate(c.Request.Context(), time.Now())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, weekly)
	})

	r.GET("/reports/weekly.html", func(c *gin.Context) {
		weekly, err := app.Aggregator.Aggregate(c.Request.Context(), time.Now())
		if err != nil {
			AbortWithError(c, err)
			return
		}

		html, err := report.RenderHTML(weekly)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	})

	// Ad-hoc delivery outside the weekly schedule.
	r.POST("/reports/weekly/send", func(c *gin.Context) {
		recipients, err := report.LoadRecipients(app.Config.Report.RecipientsFile)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if len(recipients) == 0 {
			AbortWithError(c, report.ErrNoRecipients)
			return
		}

		weekly, err := app.Aggregator.Aggregate(c.Request.Context(), time.Now())
		if err != nil {
			AbortWithError(c, err)
			return
		}

		if err := app.Sink.Deliver(c.Request.Context(), weekly, recipients); err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"sent":       true,
			"recipients": len(recipients),
		})
	})
}
