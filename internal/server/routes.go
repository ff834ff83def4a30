package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	slogGin "github.com/samber/slog-gin"

	"github.com/papersort/papersort/internal/server/handlers/folders"
	previewHandler "github.com/papersort/papersort/internal/server/handlers/preview"
	sessionHandler "github.com/papersort/papersort/internal/server/handlers/session"
	"github.com/papersort/papersort/internal/server/middlewares"
	"github.com/papersort/papersort/internal/server/ui"
	"github.com/papersort/papersort/internal/session"
	"github.com/papersort/papersort/internal/version"
)

func SetupRoutes(svc *Services) http.Handler {
	r := gin.New()

	sessionH := sessionHandler.New(svc.Session, func(view *session.View) {
		if err := svc.Watcher.Watch(view.Source); err != nil {
			slog.Warn("watch source folder", "dir", view.Source, "error", err)
		}
		paths := make([]string, len(view.Entries))
		for i, e := range view.Entries {
			paths[i] = e.Path
		}
		svc.Preview.Prefetch(paths)
	})
	previewH := previewHandler.New(svc.Preview, svc.Session)
	foldersH := folders.New()

	httpLogger := slog.Default().WithGroup("http")
	r.Use(slogGin.NewWithConfig(httpLogger, slogGin.Config{
		DefaultLevel:     slog.LevelDebug,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
	}))
	r.Use(gin.Recovery())
	r.Use(middlewares.GZIP())
	r.Use(cors.Default())

	r.GET("/", IndexHandler)
	r.GET("/healthz", HealthHandler)
	r.GET("/version", VersionHandler)

	v1 := r.Group("/api/v1")
	{
		// folders
		v1.GET("/folders/pick", foldersH.Pick)
		v1.POST("/folders/validate", foldersH.Validate)

		// session
		v1.POST("/session/load", sessionH.Load)
		v1.GET("/session", sessionH.GetView)
		v1.POST("/session/next", sessionH.Next)
		v1.POST("/session/previous", sessionH.Previous)
		v1.POST("/session/sort", sessionH.Sort)
		v1.POST("/session/undo", sessionH.Undo)

		// previews
		v1.GET("/preview/:index", previewH.FirstPage)
		v1.GET("/preview/:index/pages", previewH.AllPages)
		v1.GET("/preview/:index/image", previewH.Image)
		v1.GET("/pdf/:index", previewH.PDF)

		// websocket events
		v1.GET("/events", svc.Events.WebsocketHandler)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler()
}

func IndexHandler(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", ui.IndexHTML)
}

func HealthHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func VersionHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, version.DetailedWithApp())
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
