package notification

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a membership event pushed to connected clients
type EventType string

const (
	EventInvitationCreated    EventType = "invitation_created"
	EventMemberJoined         EventType = "member_joined"
	EventMemberRemoved        EventType = "member_removed"
	EventRoleChanged          EventType = "role_changed"
	EventOwnershipTransferred EventType = "ownership_transferred"
	EventOrganizationDeleted  EventType = "organization_deleted"
)

// Notification is a stored in-app notification for a user
type Notification struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID         uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty" gorm:"type:uuid;index"`
	Type           EventType  `json:"type" gorm:"type:varchar(50);not null"`
	Title          string     `json:"title" gorm:"type:varchar(200);not null"`
	Message        string     `json:"message" gorm:"type:text;not null"`
	IsRead         bool       `json:"is_read" gorm:"default:false;index"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}

// TableName returns the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// WebSocketMessage is the wire format pushed to connected clients
type WebSocketMessage struct {
	Type           EventType  `json:"type"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Timestamp      time.Time  `json:"timestamp"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	Data           any        `json:"data,omitempty"`
}
