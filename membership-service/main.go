package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "orghub-backend/docs"
	"orghub-backend/membership-service/handlers"
	"orghub-backend/membership-service/middleware"
	"orghub-backend/membership-service/services"
	"orghub-backend/membership-service/store"
	"orghub-backend/shared/clients"
	"orghub-backend/shared/config"
	"orghub-backend/shared/database"
	"orghub-backend/shared/utils/cache"
)

// @title Membership Service API
// @version 1.0
// @description Organizations, members, roles and email invitations
// @host localhost:8001
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Listing cache is optional; a dead Redis only disables caching.
	if err := cache.InitCacheManager(); err != nil {
		log.Printf("⚠️ Cache disabled: %v", err)
	}

	// Logo storage is optional as well.
	logos, err := services.NewLogoStorage()
	if err != nil {
		log.Printf("⚠️ Logo storage disabled: %v", err)
		logos = nil
	}

	svc := services.NewService(store.NewGormStore(database.GetDB()), clients.NewNotificationClient())

	orgHandler := handlers.NewOrganizationHandler(svc, logos)
	memberHandler := handlers.NewMemberHandler(svc)
	invitationHandler := handlers.NewInvitationHandler(svc)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.GetConfig().FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "membership",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	cfg := config.GetConfig()
	rateLimiter := middleware.NewRateLimiter(time.Hour)
	inviteLimit := middleware.RateLimitConfig{
		MaxRequests:   cfg.GetInviteRateLimitMaxRequests(),
		TimeWindow:    time.Duration(cfg.GetInviteRateLimitWindowSeconds()) * time.Second,
		BlockDuration: time.Duration(cfg.GetInviteRateLimitBlockMinutes()) * time.Minute,
	}

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		// Organizations
		api.POST("/organizations", orgHandler.CreateOrganization)
		api.GET("/organizations", orgHandler.GetOrganizations)
		api.GET("/organizations/:id", orgHandler.GetOrganization)
		api.PUT("/organizations/:id", orgHandler.UpdateOrganization)
		api.DELETE("/organizations/:id", orgHandler.DeleteOrganization)
		api.POST("/organizations/:id/logo", orgHandler.UploadLogo)
		api.DELETE("/organizations/:id/logo", orgHandler.RemoveLogo)

		// Members
		api.GET("/organizations/:id/members", memberHandler.GetMembers)
		api.PUT("/organizations/:id/members/:memberId/role", memberHandler.ChangeRole)
		api.DELETE("/organizations/:id/members/:memberId", memberHandler.RemoveMember)
		api.POST("/organizations/:id/transfer-ownership", memberHandler.TransferOwnership)

		// Invitations
		api.POST("/organizations/:id/invitations",
			rateLimiter.InviteRateLimitMiddleware(inviteLimit), invitationHandler.Invite)
		api.GET("/organizations/:id/invitations", invitationHandler.GetOrganizationInvitations)
		api.DELETE("/organizations/:id/invitations/:invitationId", invitationHandler.CancelInvitation)
		api.GET("/invitations", invitationHandler.GetMyInvitations)
		api.GET("/invitations/accept", invitationHandler.AcceptInvitationByToken)
		api.POST("/invitations/:id/accept", invitationHandler.AcceptInvitation)
		api.POST("/invitations/:id/decline", invitationHandler.DeclineInvitation)
	}

	port := strings.Split(cfg.MembershipServiceURL, ":")[2]
	log.Printf("🏢 Membership Service starting on port %s...", port)
	log.Fatal(router.Run(":" + port))
}
