package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"orghub-backend/membership-service/services"
	"orghub-backend/shared/database/models"
	"orghub-backend/shared/utils/cache"
)

// InvitationHandler serves the invitation endpoints
type InvitationHandler struct {
	svc *services.Service
}

// NewInvitationHandler creates the handler
func NewInvitationHandler(svc *services.Service) *InvitationHandler {
	return &InvitationHandler{svc: svc}
}

// InvitationResponse represents an invitation for API responses. The token is
// never included; it travels only in the invitation email.
type InvitationResponse struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	InviterEmail   string `json:"inviter_email"`
	InviteeEmail   string `json:"invitee_email"`
	Role           string `json:"role"`
	Status         string `json:"status"`
	ExpiresAt      string `json:"expires_at"`
	CreatedAt      string `json:"created_at"`
}

// InviteRequest represents request body for creating an invitation
type InviteRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

func toInvitationResponse(inv *models.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:             inv.ID.String(),
		OrganizationID: inv.OrganizationID.String(),
		InviterEmail:   inv.InviterEmail,
		InviteeEmail:   inv.InviteeEmail,
		Role:           string(inv.Role),
		Status:         string(inv.Status),
		ExpiresAt:      inv.ExpiresAt.Format(time.RFC3339),
		CreatedAt:      inv.CreatedAt.Format(time.RFC3339),
	}
}

// Invite creates an invitation to an organization
// @Summary Invite by email
// @Description Invite an email address to the organization with a role
// @Tags invitations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param invitation body InviteRequest true "Invitee email and role"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid email or role"
// @Failure 403 {object} map[string]string "Insufficient permission"
// @Failure 409 {object} map[string]string "Already a member or already invited"
// @Router /organizations/{id}/invitations [post]
func (h *InvitationHandler) Invite(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	inv, err := h.svc.Invite(actor, orgID, req.Email, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	if cm := cache.GetCacheManager(); cm != nil {
		cm.InvalidateOrganization(orgID)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    toInvitationResponse(inv),
		"message": "Invitation sent successfully",
	})
}

// GetOrganizationInvitations lists an organization's pending invitations
// @Summary List organization invitations
// @Description List the pending invitations of an organization; owner or admin
// @Tags invitations
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Insufficient permission"
// @Router /organizations/{id}/invitations [get]
func (h *InvitationHandler) GetOrganizationInvitations(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	invitations, err := h.svc.ListOrganizationInvitations(actor, orgID)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]InvitationResponse, 0, len(invitations))
	for i := range invitations {
		items = append(items, toInvitationResponse(&invitations[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}

// CancelInvitation cancels a pending invitation
// @Summary Cancel invitation
// @Description Cancel a pending invitation; inviter, owner or admin
// @Tags invitations
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param invitationId path string true "Invitation ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Insufficient permission"
// @Failure 404 {object} map[string]string "Invitation not found"
// @Failure 409 {object} map[string]string "No longer pending"
// @Router /organizations/{id}/invitations/{invitationId} [delete]
func (h *InvitationHandler) CancelInvitation(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	invitationID, ok := parseUUIDParam(c, "invitationId")
	if !ok {
		return
	}

	if err := h.svc.CancelInvitation(actor, orgID, invitationID); err != nil {
		respondError(c, err)
		return
	}

	if cm := cache.GetCacheManager(); cm != nil {
		cm.InvalidateOrganization(orgID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Invitation cancelled successfully",
	})
}

// GetMyInvitations lists the caller's actionable invitations
// @Summary List my invitations
// @Description List pending invitations addressed to the caller's email
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /invitations [get]
func (h *InvitationHandler) GetMyInvitations(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	invitations, err := h.svc.ListPendingInvitations(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]InvitationResponse, 0, len(invitations))
	for i := range invitations {
		items = append(items, toInvitationResponse(&invitations[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}

// AcceptInvitation accepts an invitation by id
// @Summary Accept invitation
// @Description Accept a pending invitation addressed to the caller
// @Tags invitations
// @Produce json
// @Param id path string true "Invitation ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Issued to a different email"
// @Failure 404 {object} map[string]string "Invitation not found"
// @Failure 410 {object} map[string]string "Invitation expired"
// @Router /invitations/{id}/accept [post]
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	invitationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	org, err := h.svc.AcceptInvitation(actor, invitationID)
	if err != nil {
		respondError(c, err)
		return
	}

	if cm := cache.GetCacheManager(); cm != nil {
		cm.InvalidateOrganization(org.ID)
		cm.InvalidateUserOrgs(actor.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"organization_id":   org.ID.String(),
			"organization_name": org.Name,
		},
		"message": "Invitation accepted successfully",
	})
}

// AcceptInvitationByToken accepts an invitation via the emailed token link
// @Summary Accept invitation by token
// @Description Accept an invitation using the token from the invitation email
// @Tags invitations
// @Produce json
// @Param token query string true "Invitation token"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Token missing"
// @Failure 403 {object} map[string]string "Issued to a different email"
// @Failure 404 {object} map[string]string "Invitation not found"
// @Failure 410 {object} map[string]string "Invitation expired"
// @Router /invitations/accept [get]
func (h *InvitationHandler) AcceptInvitationByToken(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	org, err := h.svc.AcceptInvitationByToken(actor, c.Query("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	if cm := cache.GetCacheManager(); cm != nil {
		cm.InvalidateOrganization(org.ID)
		cm.InvalidateUserOrgs(actor.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"organization_id":   org.ID.String(),
			"organization_name": org.Name,
		},
		"message": "Invitation accepted successfully",
	})
}

// DeclineInvitation declines an invitation addressed to the caller
// @Summary Decline invitation
// @Description Decline a pending invitation addressed to the caller
// @Tags invitations
// @Produce json
// @Param id path string true "Invitation ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Issued to a different email"
// @Failure 404 {object} map[string]string "Invitation not found"
// @Failure 409 {object} map[string]string "No longer pending"
// @Router /invitations/{id}/decline [post]
func (h *InvitationHandler) DeclineInvitation(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	invitationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeclineInvitation(actor, invitationID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Invitation declined",
	})
}
