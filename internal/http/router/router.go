package router

import (
	"github.com/gin-gonic/gin"

	"github.com/saapai/jarvis-sub001/core/config"
	"github.com/saapai/jarvis-sub001/internal/http/handler"
	"github.com/saapai/jarvis-sub001/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services, cfg config.Config) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	webhookHandler := handler.NewWebhookHandler(services.Planner, cfg.WebhookToken)
	router.POST("/webhook/inbound", webhookHandler.HandleInbound)

	statusHandler := handler.NewStatusHandler(services.Stores().Members(), services.Stores().Polls())
	router.GET("/status", statusHandler.HandleStatus)

	adminHandler := handler.NewAdminHandler(
		services.Stores().Messages(),
		services.Stores().Polls(),
		services.Stores().PollResponses(),
		cfg.WebhookToken,
	)
	router.DELETE("/admin/broadcasts", adminHandler.HandleDeleteBroadcast)
	router.GET("/admin/polls/:id/results", adminHandler.HandlePollResults)
}
