package services

import (
	"log"
	"time"

	"github.com/google/uuid"

	"orghub-backend/membership-service/store"
	"orghub-backend/shared/database/models"
	"orghub-backend/shared/database/models/notification"
	"orghub-backend/shared/utils/apperrors"
	utils "orghub-backend/shared/utils/auth"
	"orghub-backend/shared/utils/permission"
)

// Actor is the authenticated caller, as established by the identity provider.
// The email is verified upstream and is the key invitations are matched on.
type Actor struct {
	ID    uuid.UUID
	Email string
}

// Notifier dispatches membership events. Implementations must not block and
// must never surface failures to the caller; delivery is best effort.
type Notifier interface {
	InvitationCreated(org *models.Organization, inv *models.Invitation)
	MemberJoined(org *models.Organization, member *models.Membership)
	MemberRemoved(org *models.Organization, member *models.Membership)
	RoleChanged(org *models.Organization, member *models.Membership, oldRole permission.Role)
	OwnershipTransferred(org *models.Organization, formerOwner, newOwner *models.Membership)
	OrganizationDeleted(org *models.Organization, members []models.Membership)
}

// Service orchestrates membership mutations: it fetches a fresh role
// snapshot, evaluates permissions, writes through the store and dispatches
// notifications, in that order.
type Service struct {
	store    store.Store
	notifier Notifier
	now      func() time.Time
	newToken func() (string, error)
}

// NewService creates a membership service over the given store and notifier
func NewService(st store.Store, notifier Notifier) *Service {
	return &Service{
		store:    st,
		notifier: notifier,
		now: func() time.Time {
			return time.Now().UTC()
		},
		newToken: utils.GenerateInvitationToken,
	}
}

// requireMembership fetches the actor's membership in the organization,
// mapping a missing membership to an authorization failure
func (s *Service) requireMembership(orgID, userID uuid.UUID) (*models.Membership, error) {
	m, err := s.store.GetMembership(orgID, userID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.NotAuthorized("not a member of this organization")
		}
		return nil, err
	}
	return m, nil
}

// audit records a membership mutation, best effort
func (s *Service) audit(orgID, actorID uuid.UUID, targetUserID *uuid.UUID, action, detail string) {
	entry := &notification.AuditLog{
		OrganizationID: orgID,
		ActorID:        actorID,
		TargetUserID:   targetUserID,
		Action:         action,
		Detail:         detail,
	}
	if err := s.store.InsertAuditLog(entry); err != nil {
		log.Printf("⚠️ Failed to write audit log (org=%s action=%s): %v", orgID, action, err)
	}
}
