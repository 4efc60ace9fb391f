package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"orghub-backend/notification-service/services"
	"orghub-backend/shared/database"
	"orghub-backend/shared/database/models"
	"orghub-backend/shared/database/models/notification"
)

// EventRequest is the membership event the membership service posts. When
// recipient_ids is empty the event goes to every member of the organization.
type EventRequest struct {
	Type           notification.EventType `json:"type" binding:"required"`
	OrganizationID string                 `json:"organization_id" binding:"required"`
	Title          string                 `json:"title" binding:"required"`
	Message        string                 `json:"message" binding:"required"`
	RecipientIDs   []string               `json:"recipient_ids,omitempty"`
}

// HandleEvent stores an in-app notification per recipient and pushes the
// event to their websocket connections
// @Summary Dispatch membership event
// @Description Store and push a membership event to its recipients
// @Tags notifications
// @Accept json
// @Produce json
// @Param event body EventRequest true "Membership event"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /notifications/events [post]
func HandleEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization_id format"})
		return
	}

	recipients, err := resolveRecipients(orgID, req.RecipientIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve recipients"})
		return
	}

	db := database.GetDB()
	wsManager := services.GetWebSocketManager()
	stored := 0

	for _, userID := range recipients {
		notif := notification.Notification{
			UserID:         userID,
			OrganizationID: &orgID,
			Type:           req.Type,
			Title:          req.Title,
			Message:        req.Message,
		}
		if err := db.Create(&notif).Error; err != nil {
			log.Printf("⚠️ Failed to store notification for user %s: %v", userID, err)
			continue
		}
		stored++

		uid := userID
		msg := &notification.WebSocketMessage{
			Type:           req.Type,
			Title:          req.Title,
			Message:        req.Message,
			Timestamp:      time.Now().UTC(),
			OrganizationID: &orgID,
			UserID:         &uid,
		}
		// Offline users just read the stored notification later.
		if err := wsManager.SendToUser(userID.String(), msg); err == nil {
			log.Printf("📡 Event %s pushed to user %s", req.Type, userID)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"recipients": len(recipients),
			"stored":     stored,
		},
	})
}

// resolveRecipients expands an empty recipient list to the organization's
// current members
func resolveRecipients(orgID uuid.UUID, ids []string) ([]uuid.UUID, error) {
	if len(ids) > 0 {
		recipients := make([]uuid.UUID, 0, len(ids))
		for _, raw := range ids {
			id, err := uuid.Parse(raw)
			if err != nil {
				continue
			}
			recipients = append(recipients, id)
		}
		return recipients, nil
	}

	var memberships []models.Membership
	db := database.GetDB()
	if err := db.Where("organization_id = ?", orgID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	recipients := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		recipients = append(recipients, m.UserID)
	}
	return recipients, nil
}

// GetNotifications lists a user's notifications, newest first
// @Summary Get notifications
// @Description Get the notifications of a user
// @Tags notifications
// @Produce json
// @Param user_id query string true "User ID" format(uuid)
// @Param unread query bool false "Only unread notifications"
// @Success 200 {array} notification.Notification
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /notifications [get]
func GetNotifications(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid user_id is required"})
		return
	}

	db := database.GetDB()
	query := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(100)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = false")
	}

	var notifications []notification.Notification
	if err := query.Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkAsRead marks a notification as read
// @Summary Mark notification as read
// @Description Mark a notification as read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID" format(uuid)
// @Success 200 {object} notification.Notification
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /notifications/{id}/read [put]
func MarkAsRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	var notif notification.Notification
	db := database.GetDB()

	if err := db.First(&notif, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	now := time.Now().UTC()
	notif.IsRead = true
	notif.ReadAt = &now
	if err := db.Save(&notif).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, notif)
}

// DeleteNotification deletes a notification
// @Summary Delete notification
// @Description Delete a notification by ID
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID" format(uuid)
// @Success 204
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /notifications/{id} [delete]
func DeleteNotification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	db := database.GetDB()
	if err := db.Delete(&notification.Notification{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}

	c.Status(http.StatusNoContent)
}
