package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	notifConfig "orghub-backend/notification-service/config"
	"orghub-backend/notification-service/handlers"
	"orghub-backend/notification-service/services"
	"orghub-backend/shared/config"
	"orghub-backend/shared/database"
)

// @title Notification Service API
// @version 1.0
// @description Invitation emails, in-app notifications and websocket events
// @host localhost:8004
// @BasePath /api

func main() {
	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	router := gin.Default()

	cfg := notifConfig.GetNotificationConfig()
	emailService := services.NewEmailService(cfg.Config)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "notification-service",
			"status":  "healthy",
		})
	})

	// Email routes
	emailHandler := handlers.NewEmailHandler(emailService, cfg)
	emailRoutes := router.Group("/api/notifications/email")
	{
		emailRoutes.POST("/send", emailHandler.SendEmail)
		emailRoutes.POST("/invitation", emailHandler.SendInvitationEmail)
	}

	// Membership event intake
	router.POST("/api/notifications/events", handlers.HandleEvent)

	// Notification routes
	router.GET("/api/notifications", handlers.GetNotifications)
	router.PUT("/api/notifications/:id/read", handlers.MarkAsRead)
	router.DELETE("/api/notifications/:id", handlers.DeleteNotification)

	// WebSocket endpoint
	router.GET("/ws/notifications/:user_id", handlers.HandleWebSocket)

	// WebSocket message sending endpoint (internal)
	router.POST("/ws/send", handlers.SendWebSocketMessage)

	port := strings.Split(config.GetConfig().NotificationServiceURL, ":")[2]
	log.Printf("🔔 Notification Service starting on port %s...", port)
	log.Fatal(router.Run(":" + port))
}
