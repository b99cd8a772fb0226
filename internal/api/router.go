// Package api wires the HTTP handlers into a gin router.
package api

import (
	"net/http"

	"agrivoltaics/internal/api/handlers"
	"agrivoltaics/internal/api/middleware"
	"agrivoltaics/internal/pipeline"
	"agrivoltaics/internal/store"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Engine  *pipeline.Engine
	Sites   *handlers.SiteHandler
	Archive *store.Archive // optional
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	evaluateHandler := handlers.NewEvaluateHandler(d.Engine, d.Sites, d.Archive)
	sweepHandler := handlers.NewSweepHandler(d.Engine, d.Sites)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "archive": d.Archive != nil})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/evaluate", evaluateHandler.Evaluate)
		v1.POST("/evaluate/compare", evaluateHandler.Compare)

		v1.GET("/runs", evaluateHandler.ListRuns)
		v1.GET("/runs/:id", evaluateHandler.GetRun)
		v1.DELETE("/runs/:id", evaluateHandler.DeleteRun)
		v1.GET("/runs/:id/report", evaluateHandler.GetReport)

		v1.POST("/sweep", sweepHandler.RunSweep)
		v1.GET("/sweep/stream", sweepHandler.StreamSweep)

		v1.GET("/sites", d.Sites.ListSites)
		v1.GET("/sites/:id", d.Sites.GetSite)
		v1.GET("/mountings", handlers.ListMountings)
		v1.GET("/crops", handlers.ListCrops)
		v1.GET("/crops/:name", handlers.GetCrop)
	}
	return router
}
