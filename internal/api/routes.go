package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ytlens/sponsorlens/internal/telemetry"
)

// SetupRoutes configures all API routes on the engine.
func SetupRoutes(router *gin.Engine, handler *Handler, tel *telemetry.Provider) {
	if tel != nil {
		router.GET("/metrics", gin.WrapH(tel.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		runGroup := v1.Group("/runs")
		{
			runGroup.POST("", handler.StartRun)            // POST   /api/v1/runs
			runGroup.GET("", handler.ListRuns)             // GET    /api/v1/runs
			runGroup.GET("/:id", handler.GetRun)           // GET    /api/v1/runs/:id
			runGroup.DELETE("/:id", handler.CancelRun)     // DELETE /api/v1/runs/:id
			runGroup.GET("/:id/events", handler.StreamRun) // GET    /api/v1/runs/:id/events
			runGroup.GET("/:id/summary", handler.Summarize)
		}

		v1.POST("/classify", handler.Classify) // POST /api/v1/classify
	}
}
