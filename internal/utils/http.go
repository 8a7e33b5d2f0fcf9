package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// UrlFor builds an absolute URL for path on the host serving the request.
// The scheme honours TLS termination upstream via X-Forwarded-Proto.
func UrlFor(c *gin.Context, path string) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(c.Request.Host)
	if !strings.HasPrefix(path, "/") {
		b.WriteByte('/')
	}
	b.WriteString(path)
	return b.String()
}
