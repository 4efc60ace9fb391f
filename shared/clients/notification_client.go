package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"orghub-backend/shared/config"
	"orghub-backend/shared/database/models"
	"orghub-backend/shared/database/models/notification"
	"orghub-backend/shared/utils/permission"
)

// NotificationClient forwards membership events to the notification service.
// Every dispatch runs in its own goroutine and failures are logged, never
// returned: a dead notification service must not fail a mutation that already
// committed.
type NotificationClient struct {
	baseURL     string
	frontendURL string
	httpClient  *http.Client
}

// NewNotificationClient creates a client pointed at the notification service
func NewNotificationClient() *NotificationClient {
	cfg := config.GetConfig()
	return &NotificationClient{
		baseURL:     cfg.NotificationServiceURL,
		frontendURL: cfg.FrontendURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// InvitationEmailRequest is the payload for the invitation email endpoint
type InvitationEmailRequest struct {
	Email            string `json:"email"`
	OrganizationName string `json:"organization_name"`
	InviterEmail     string `json:"inviter_email"`
	Role             string `json:"role"`
	AcceptURL        string `json:"accept_url"`
	ExpiresAt        string `json:"expires_at"`
}

// EventRequest is the payload for the membership event endpoint. The
// notification service stores an in-app notification per recipient and pushes
// the event to their websocket connections.
type EventRequest struct {
	Type           notification.EventType `json:"type"`
	OrganizationID string                 `json:"organization_id"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	RecipientIDs   []string               `json:"recipient_ids,omitempty"`
}

// InvitationCreated sends the invitation email with the accept link
func (nc *NotificationClient) InvitationCreated(org *models.Organization, inv *models.Invitation) {
	req := InvitationEmailRequest{
		Email:            inv.InviteeEmail,
		OrganizationName: org.Name,
		InviterEmail:     inv.InviterEmail,
		Role:             string(inv.Role),
		AcceptURL:        fmt.Sprintf("%s/invitations/accept?token=%s", nc.frontendURL, inv.Token),
		ExpiresAt:        inv.ExpiresAt.Format(time.RFC3339),
	}
	nc.post("/api/notifications/email/invitation", req)
}

// MemberJoined notifies the organization that a member accepted an invitation
func (nc *NotificationClient) MemberJoined(org *models.Organization, member *models.Membership) {
	nc.post("/api/notifications/events", EventRequest{
		Type:           notification.EventMemberJoined,
		OrganizationID: org.ID.String(),
		Title:          "New member",
		Message:        fmt.Sprintf("%s joined %s as %s", member.UserEmail, org.Name, member.Role),
	})
}

// MemberRemoved notifies the removed member and the organization
func (nc *NotificationClient) MemberRemoved(org *models.Organization, member *models.Membership) {
	nc.post("/api/notifications/events", EventRequest{
		Type:           notification.EventMemberRemoved,
		OrganizationID: org.ID.String(),
		Title:          "Member removed",
		Message:        fmt.Sprintf("%s was removed from %s", member.UserEmail, org.Name),
		RecipientIDs:   []string{member.UserID.String()},
	})
}

// RoleChanged notifies the affected member of their new role
func (nc *NotificationClient) RoleChanged(org *models.Organization, member *models.Membership, oldRole permission.Role) {
	nc.post("/api/notifications/events", EventRequest{
		Type:           notification.EventRoleChanged,
		OrganizationID: org.ID.String(),
		Title:          "Role changed",
		Message:        fmt.Sprintf("your role in %s changed from %s to %s", org.Name, oldRole, member.Role),
		RecipientIDs:   []string{member.UserID.String()},
	})
}

// OwnershipTransferred notifies both parties of the transfer
func (nc *NotificationClient) OwnershipTransferred(org *models.Organization, formerOwner, newOwner *models.Membership) {
	nc.post("/api/notifications/events", EventRequest{
		Type:           notification.EventOwnershipTransferred,
		OrganizationID: org.ID.String(),
		Title:          "Ownership transferred",
		Message:        fmt.Sprintf("%s is now the owner of %s", newOwner.UserEmail, org.Name),
		RecipientIDs:   []string{formerOwner.UserID.String(), newOwner.UserID.String()},
	})
}

// OrganizationDeleted notifies every former member
func (nc *NotificationClient) OrganizationDeleted(org *models.Organization, members []models.Membership) {
	recipients := make([]string, 0, len(members))
	for _, m := range members {
		recipients = append(recipients, m.UserID.String())
	}
	nc.post("/api/notifications/events", EventRequest{
		Type:           notification.EventOrganizationDeleted,
		OrganizationID: org.ID.String(),
		Title:          "Organization deleted",
		Message:        fmt.Sprintf("the organization %s was deleted", org.Name),
		RecipientIDs:   recipients,
	})
}

// post fires the request in the background
func (nc *NotificationClient) post(endpoint string, payload interface{}) {
	go func() {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			log.Printf("⚠️ Failed to marshal notification payload for %s: %v", endpoint, err)
			return
		}

		url := fmt.Sprintf("%s%s", nc.baseURL, endpoint)
		resp, err := nc.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
		if err != nil {
			log.Printf("⚠️ Notification dispatch to %s failed: %v", endpoint, err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusMultipleChoices {
			log.Printf("⚠️ Notification service returned status %d for %s", resp.StatusCode, endpoint)
		}
	}()
}
