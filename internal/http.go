package app

import (
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"

	"premises-access-control/internal/config"
	"premises-access-control/internal/routes"
	"premises-access-control/internal/utils"
)

func securityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")

	// Credential codes must never end up in intermediary caches.
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.Next()
}

// IPAccessControl rejects requests from outside the allowed networks.
// Loopback is always allowed outside release mode.
func IPAccessControl(allowedCIDRs []string) gin.HandlerFunc {
	if os.Getenv("GIN_MODE") != "release" {
		allowedCIDRs = append(allowedCIDRs, "127.0.0.1/8", "::1/128")
	}

	allowed := make([]*net.IPNet, 0, len(allowedCIDRs))
	for _, cidr := range allowedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			slog.Warn("Skipping invalid CIDR in allowed networks", "cidr", cidr)
			continue
		}
		allowed = append(allowed, network)
	}

	forbid := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}

	return func(c *gin.Context) {
		ip := net.ParseIP(c.ClientIP())
		if ip == nil {
			slog.Warn("Could not parse client IP", "ip", c.ClientIP())
			forbid(c)
			return
		}
		for _, network := range allowed {
			if network.Contains(ip) {
				c.Next()
				return
			}
		}
		slog.Warn("Rejected request from disallowed network", "ip", ip)
		forbid(c)
	}
}

func loadTemplates(dir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()
	r.AddFromFiles("index.html.tmpl", filepath.Join(dir, "index.html.tmpl"))
	r.AddFromFiles("error.html.tmpl", filepath.Join(dir, "error.html.tmpl"))
	return r
}

func HTTPServer(app *routes.App) *gin.Engine {
	r := gin.Default()

	r.HTMLRender = loadTemplates("web/templates")

	if config.Cfg.AllowedNetworks != "" {
		slog.Debug("Enabling IP access control", "allowed_networks", config.Cfg.AllowedNetworks)
		var allowedCIDRs []string

		for cidr := range strings.SplitSeq(config.Cfg.AllowedNetworks, ",") {
			// Remove spaces and ignore empty sets
			if cidr := strings.TrimSpace(cidr); cidr != "" {
				allowedCIDRs = append(allowedCIDRs, cidr)
			}
		}

		r.Use(IPAccessControl(allowedCIDRs))
	}
	r.Use(securityHeaders)
	r.Use(routes.ErrorHandler())

	// Landing page with a manual scan form for front-desk use.
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html.tmpl", gin.H{
			"ScanURL":   utils.UrlFor(c, "/api/scan"),
			"ReportURL": utils.UrlFor(c, "/api/reports/weekly.html"),
		})
	})

	routes.RegisterRoutes(r, app)

	return r
}
