package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	notifConfig "orghub-backend/notification-service/config"
	"orghub-backend/notification-service/services"
)

// EmailHandler handles email-related HTTP requests
type EmailHandler struct {
	emailService *services.EmailService
	config       *notifConfig.NotificationConfig
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(emailService *services.EmailService, cfg *notifConfig.NotificationConfig) *EmailHandler {
	return &EmailHandler{
		emailService: emailService,
		config:       cfg,
	}
}

// InvitationEmailRequest is the payload the membership service posts when an
// invitation is created
type InvitationEmailRequest struct {
	Email            string `json:"email" binding:"required"`
	OrganizationName string `json:"organization_name" binding:"required"`
	InviterEmail     string `json:"inviter_email"`
	Role             string `json:"role" binding:"required"`
	AcceptURL        string `json:"accept_url" binding:"required"`
	ExpiresAt        string `json:"expires_at"`
}

// SendEmail godoc
// @Summary Send email
// @Description Send an email through the notification service
// @Tags email
// @Accept json
// @Produce json
// @Param email body services.EmailRequest true "Email request"
// @Success 200 {object} services.EmailResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /notifications/email/send [post]
func (eh *EmailHandler) SendEmail(c *gin.Context) {
	var request services.EmailRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	response, err := eh.emailService.SendEmail(request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send email",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// SendInvitationEmail godoc
// @Summary Send invitation email
// @Description Send an organization invitation email with the accept link
// @Tags email
// @Accept json
// @Produce json
// @Param email body InvitationEmailRequest true "Invitation email request"
// @Success 200 {object} services.EmailResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /notifications/email/invitation [post]
func (eh *EmailHandler) SendInvitationEmail(c *gin.Context) {
	var request InvitationEmailRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if !eh.config.EmailConfig.EnableEmailNotification {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Email notifications are disabled",
		})
		return
	}

	response, err := eh.emailService.SendInvitationEmail(
		request.Email,
		request.OrganizationName,
		request.InviterEmail,
		request.Role,
		request.AcceptURL,
		request.ExpiresAt,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send invitation email",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}
