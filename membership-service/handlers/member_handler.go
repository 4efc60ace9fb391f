package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"orghub-backend/membership-service/services"
	"orghub-backend/shared/database/models"
	"orghub-backend/shared/utils/cache"
	"orghub-backend/shared/utils/query"
)

// MemberHandler serves the membership endpoints
type MemberHandler struct {
	svc *services.Service
}

// NewMemberHandler creates the handler
func NewMemberHandler(svc *services.Service) *MemberHandler {
	return &MemberHandler{svc: svc}
}

// MemberResponse represents a membership for API responses
type MemberResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
	Role      string `json:"role"`
	JoinedAt  string `json:"joined_at"`
}

// ChangeRoleRequest represents request body for a role change
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// TransferOwnershipRequest represents request body for an ownership transfer
type TransferOwnershipRequest struct {
	MemberID string `json:"member_id" binding:"required"`
}

func toMemberResponse(m *models.Membership) MemberResponse {
	return MemberResponse{
		ID:        m.ID.String(),
		UserID:    m.UserID.String(),
		UserEmail: m.UserEmail,
		Role:      string(m.Role),
		JoinedAt:  m.JoinedAt.Format(time.RFC3339),
	}
}

// GetMembers lists the members of an organization
// @Summary List members
// @Description List the members of an organization the caller belongs to
// @Tags members
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 50)"
// @Param search query string false "Search term across member emails"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 404 {object} map[string]string "Organization not found"
// @Router /organizations/{id}/members [get]
func (h *MemberHandler) GetMembers(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	// Membership is checked before the cache is consulted, so a cached
	// listing is never served to a non-member.
	members, err := h.svc.ListMembers(actor, orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	if cm := cache.GetCacheManager(); cm != nil {
		var cached []models.Membership
		if cm.Get(cache.MemberListKey(orgID), &cached) {
			members = cached
		} else {
			cm.Set(cache.MemberListKey(orgID), members, cache.MemberListTTL)
		}
	}

	params := query.ParseParams(c)
	filtered := make([]models.Membership, 0, len(members))
	for _, m := range members {
		if params.MatchesSearch(m.UserEmail) {
			filtered = append(filtered, m)
		}
	}

	start, end := params.PageBounds(len(filtered))
	items := make([]MemberResponse, 0, end-start)
	for i := range filtered[start:end] {
		items = append(items, toMemberResponse(&filtered[start+i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      items,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, int64(len(filtered))),
		},
	})
}

// ChangeRole changes a member's role
// @Summary Change member role
// @Description Change a member's role; promotion to owner goes through ownership transfer
// @Tags members
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param memberId path string true "Membership ID" format(uuid)
// @Param role body ChangeRoleRequest true "New role"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Unknown role"
// @Failure 403 {object} map[string]string "Insufficient permission"
// @Failure 404 {object} map[string]string "Member not found"
// @Router /organizations/{id}/members/{memberId}/role [put]
func (h *MemberHandler) ChangeRole(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseUUIDParam(c, "memberId")
	if !ok {
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	member, err := h.svc.ChangeRole(actor, orgID, memberID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	if cm := cache.GetCacheManager(); cm != nil {
		cm.InvalidateOrganization(orgID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toMemberResponse(member),
		"message": "Role updated successfully",
	})
}

// RemoveMember removes a member from an organization
// @Summary Remove member
// @Description Remove a member; members other than the owner may remove themselves
// @Tags members
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param memberId path string true "Membership ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Insufficient permission"
// @Failure 404 {object} map[string]string "Member not found"
// @Router /organizations/{id}/members/{memberId} [delete]
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseUUIDParam(c, "memberId")
	if !ok {
		return
	}

	if err := h.svc.RemoveMember(actor, orgID, memberID); err != nil {
		respondError(c, err)
		return
	}

	if cm := cache.GetCacheManager(); cm != nil {
		cm.InvalidateOrganization(orgID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Member removed successfully",
	})
}

// TransferOwnership transfers the organization to another member
// @Summary Transfer ownership
// @Description Make another member the owner; the caller becomes an admin
// @Tags members
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param transfer body TransferOwnershipRequest true "Membership ID of the new owner"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Only the owner can transfer"
// @Failure 404 {object} map[string]string "Member not found"
// @Router /organizations/{id}/transfer-ownership [post]
func (h *MemberHandler) TransferOwnership(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	newOwnerMemberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid member_id format"})
		return
	}

	newOwner, err := h.svc.TransferOwnership(actor, orgID, newOwnerMemberID)
	if err != nil {
		respondError(c, err)
		return
	}

	if cm := cache.GetCacheManager(); cm != nil {
		cm.InvalidateOrganization(orgID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toMemberResponse(newOwner),
		"message": "Ownership transferred successfully",
	})
}
