package models

import (
	"time"

	"github.com/google/uuid"

	"orghub-backend/shared/utils/permission"
)

// Membership links a user to an organization with a role. Users live in an
// external identity provider; only their id and email are stored here.
type Membership struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID       `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_org_user"`
	UserID         uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_org_user"`
	UserEmail      string          `json:"user_email" gorm:"size:254;not null;index"`
	Role           permission.Role `json:"role" gorm:"size:20;not null"`
	JoinedAt       time.Time       `json:"joined_at" gorm:"autoCreateTime"`

	// Relations
	Organization Organization `json:"-" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
}
