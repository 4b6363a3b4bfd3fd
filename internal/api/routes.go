package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers all API routes on the router.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.Use(cors.Default())

	api := router.Group("/api")
	{
		api.GET("/apartments", handler.GetApartments)
		api.GET("/apartments/:id", handler.GetApartment)
		api.POST("/scrape", handler.TriggerScrape)
		api.GET("/scrape/status", handler.GetScrapeStatus)
		api.GET("/stats", handler.GetStats)
		api.GET("/neighborhoods", handler.GetNeighborhoods)
	}
}
