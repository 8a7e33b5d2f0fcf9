package routes

import (
	"github.com/gin-gonic/gin"

	"premises-access-control/internal/access"
	"premises-access-control/internal/config"
	"premises-access-control/internal/credential"
	"premises-access-control/internal/report"
	"premises-access-control/internal/storage"
)

// App bundles the services that route handlers depend on. It is built
// once at startup and shared by all requests.
type App struct {
	Config     *config.Config
	Provider   storage.Provider
	Issuer     *credential.Issuer
	Scanner    *access.Scanner
	Aggregator *report.Aggregator
	Sink       report.Sink
	Decoder    access.PayloadDecoder
}

// RegisterRoutes wires all API routes onto the engine.
func RegisterRoutes(r *gin.Engine, app *App) {
	api := r.Group("/api")

	Health(api)
	CredentialRoutes(api, app)
	ScanRoutes(api, app)
	AccessLogRoutes(api, app)
	ReportRoutes(api, app)
}
