package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"orghub-backend/membership-service/services"
	"orghub-backend/shared/database/models"
	"orghub-backend/shared/utils/cache"
	"orghub-backend/shared/utils/query"
)

// OrganizationHandler serves the organization endpoints
type OrganizationHandler struct {
	svc   *services.Service
	logos *services.LogoStorage
}

// NewOrganizationHandler creates the handler
func NewOrganizationHandler(svc *services.Service, logos *services.LogoStorage) *OrganizationHandler {
	return &OrganizationHandler{svc: svc, logos: logos}
}

// OrganizationResponse represents organization data for API responses
type OrganizationResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CreateOrganizationRequest represents request body for creating organization
type CreateOrganizationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateOrganizationRequest represents request body for updating organization
type UpdateOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *OrganizationHandler) toResponse(c *gin.Context, org *models.Organization) OrganizationResponse {
	resp := OrganizationResponse{
		ID:          org.ID.String(),
		Name:        org.Name,
		Description: org.Description,
		CreatedAt:   org.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   org.UpdatedAt.Format(time.RFC3339),
	}
	if org.LogoKey != "" && h.logos != nil {
		if url, err := h.logos.LogoURL(c.Request.Context(), org.LogoKey, time.Hour); err == nil {
			resp.LogoURL = url
		}
	}
	return resp
}

// CreateOrganization creates a new organization owned by the caller
// @Summary Create organization
// @Description Create a new organization; the caller becomes its owner
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body CreateOrganizationRequest true "Organization information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	org, err := h.svc.CreateOrganization(actor, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	if cm := cache.GetCacheManager(); cm != nil {
		cm.InvalidateUserOrgs(actor.ID)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    h.toResponse(c, org),
		"message": "Organization created successfully",
	})
}

// GetOrganizations lists the organizations the caller belongs to
// @Summary List organizations
// @Description List the organizations the caller is a member of
// @Tags organizations
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 50)"
// @Param search query string false "Search term across name and description"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /organizations [get]
func (h *OrganizationHandler) GetOrganizations(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	params := query.ParseParams(c)

	var orgs []models.Organization
	cm := cache.GetCacheManager()
	cacheKey := cache.OrgListKey(actor.ID)
	if cm == nil || !cm.Get(cacheKey, &orgs) {
		var err error
		orgs, err = h.svc.ListOrganizations(actor)
		if err != nil {
			respondError(c, err)
			return
		}
		if cm != nil {
			cm.Set(cacheKey, orgs, cache.OrgListTTL)
		}
	}

	filtered := make([]models.Organization, 0, len(orgs))
	for _, org := range orgs {
		if params.MatchesSearch(org.Name, org.Description) {
			filtered = append(filtered, org)
		}
	}

	start, end := params.PageBounds(len(filtered))
	items := make([]OrganizationResponse, 0, end-start)
	for _, org := range filtered[start:end] {
		items = append(items, h.toResponse(c, &org))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      items,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, int64(len(filtered))),
		},
	})
}

// GetOrganization returns one organization; members only
// @Summary Get organization
// @Description Get an organization the caller is a member of
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 404 {object} map[string]string "Organization not found"
// @Router /organizations/{id} [get]
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	org, err := h.svc.GetOrganization(actor, orgID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.toResponse(c, org),
	})
}

// UpdateOrganization updates name and description; owner or admin
// @Summary Update organization
// @Description Update organization name and description
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param organization body UpdateOrganizationRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Insufficient permission"
// @Failure 404 {object} map[string]string "Organization not found"
// @Router /organizations/{id} [put]
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	org, err := h.svc.UpdateOrganization(actor, orgID, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.toResponse(c, org),
		"message": "Organization updated successfully",
	})
}

// DeleteOrganization deletes an organization; owner only
// @Summary Delete organization
// @Description Delete an organization together with its memberships and invitations
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Owner only"
// @Failure 404 {object} map[string]string "Organization not found"
// @Router /organizations/{id} [delete]
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteOrganization(actor, orgID); err != nil {
		respondError(c, err)
		return
	}

	if cm := cache.GetCacheManager(); cm != nil {
		cm.InvalidateOrganization(orgID)
		cm.InvalidateUserOrgs(actor.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organization deleted successfully",
	})
}

// UploadLogo stores a new organization logo; owner or admin
// @Summary Upload organization logo
// @Description Upload a logo image for the organization
// @Tags organizations
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param logo formData file true "Logo image"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid upload"
// @Failure 403 {object} map[string]string "Insufficient permission"
// @Router /organizations/{id}/logo [post]
func (h *OrganizationHandler) UploadLogo(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if h.logos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Logo storage is not available"})
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "A logo file is required"})
		return
	}
	if fileHeader.Size > 5<<20 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Logo must be smaller than 5MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	objectKey, err := h.logos.UploadLogo(c.Request.Context(), orgID, fileHeader.Filename,
		file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err)
		return
	}

	previousKey, err := h.svc.SetOrganizationLogo(actor, orgID, objectKey)
	if err != nil {
		// The permission check failed after the upload; drop the orphan object.
		_ = h.logos.RemoveLogo(c.Request.Context(), objectKey)
		respondError(c, err)
		return
	}
	_ = h.logos.RemoveLogo(c.Request.Context(), previousKey)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logo uploaded successfully",
	})
}

// RemoveLogo removes the organization logo; owner or admin
// @Summary Remove organization logo
// @Description Remove the organization's logo
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Insufficient permission"
// @Router /organizations/{id}/logo [delete]
func (h *OrganizationHandler) RemoveLogo(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if h.logos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Logo storage is not available"})
		return
	}

	previousKey, err := h.svc.SetOrganizationLogo(actor, orgID, "")
	if err != nil {
		respondError(c, err)
		return
	}
	_ = h.logos.RemoveLogo(c.Request.Context(), previousKey)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logo removed successfully",
	})
}
