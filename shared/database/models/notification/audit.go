package notification

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a membership mutation for later review. Invitation
// acceptance, role changes and ownership transfers all leave an entry.
type AuditLog struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index"`
	ActorID        uuid.UUID  `json:"actor_id" gorm:"type:uuid;not null;index"`
	TargetUserID   *uuid.UUID `json:"target_user_id,omitempty" gorm:"type:uuid;index"`
	Action         string     `json:"action" gorm:"type:varchar(50);not null"`
	Detail         string     `json:"detail" gorm:"type:text"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName returns the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
