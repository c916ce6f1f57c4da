package routes

import (
	"net/http"
	"time"

	"github.com/dailywell/content-engine/internal/handler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	contentHandler *handler.ContentHandler,
	reviewHandler *handler.ReviewHandler,
	versionHandler *handler.VersionHandler,
	deliveryHandler *handler.DeliveryHandler,
	ruleHandler *handler.RuleHandler,
) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "content-engine",
			"time":    time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	// generation pipeline
	api.POST("/generate", contentHandler.Generate)
	api.POST("/validate", contentHandler.Validate)

	// review workflow
	review := api.Group("/review")
	review.GET("/queue", reviewHandler.Queue)
	review.POST("/action", reviewHandler.Action)
	api.POST("/moderation/batch", reviewHandler.Batch)

	// version history
	versions := api.Group("/versions")
	versions.GET("/history", versionHandler.History)
	versions.POST("/create", versionHandler.Create)
	versions.POST("/rollback", versionHandler.Rollback)

	// delivery
	api.GET("/content/cached", deliveryHandler.Cached)
	cdn := api.Group("/cdn")
	cdn.GET("/performance", deliveryHandler.Performance)
	cdn.POST("/warm-cache", deliveryHandler.WarmCache)

	// approval rules
	rules := api.Group("/rules")
	rules.GET("", ruleHandler.List)
	rules.POST("", ruleHandler.Create)
	rules.PATCH("/:id/enabled", ruleHandler.SetEnabled)
}
