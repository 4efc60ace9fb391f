package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"orghub-backend/shared/utils/permission"
)

// InvitationStatus is the lifecycle state of an invitation
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	// InvitationStatusExpired is terminal and covers both time-based expiry
	// and an explicit decline by the invitee.
	InvitationStatusExpired InvitationStatus = "expired"
)

// InvitationTTL is how long an invitation stays acceptable after creation
const InvitationTTL = 7 * 24 * time.Hour

type Invitation struct {
	ID             uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID        `json:"organization_id" gorm:"type:uuid;not null;index"`
	InviterID      uuid.UUID        `json:"inviter_id" gorm:"type:uuid;not null"`
	InviterEmail   string           `json:"inviter_email" gorm:"size:254"`
	InviteeEmail   string           `json:"invitee_email" gorm:"size:254;not null;index"`
	Role           permission.Role  `json:"role" gorm:"size:20;not null"`
	Status         InvitationStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
	Token          string           `json:"-" gorm:"size:128;uniqueIndex;not null"`
	ExpiresAt      time.Time        `json:"expires_at" gorm:"not null"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	// Relations
	Organization Organization `json:"-" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
}

// IsExpired reports whether the invitation is past its expiry at the given time
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// EmailMatches compares the invitee email case-insensitively
func (i *Invitation) EmailMatches(email string) bool {
	return strings.EqualFold(i.InviteeEmail, email)
}
