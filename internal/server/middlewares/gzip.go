package middlewares

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

var (
	// image/PDF payloads and the websocket don't compress
	excludedPaths = []string{
		"/healthz",
		"/api/v1/pdf",
		"/api/v1/preview",
		"/api/v1/events",
	}
	excludedExtensions = []string{
		".png", ".gif", ".jpeg", ".jpg", ".webp", ".ico",
		".pdf",
		".woff", ".woff2", ".ttf", ".otf",
	}
)

func GZIP() gin.HandlerFunc {
	return gzip.Gzip(
		gzip.BestSpeed,
		gzip.WithExcludedPaths(excludedPaths),
		gzip.WithExcludedExtensions(excludedExtensions),
	)
}
