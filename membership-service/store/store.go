package store

import (
	"time"

	"github.com/google/uuid"

	"orghub-backend/shared/database/models"
	"orghub-backend/shared/database/models/notification"
	"orghub-backend/shared/utils/permission"
)

// Store is the persistence contract the membership services operate against.
// Implementations must enforce two uniqueness constraints: one membership per
// (organization, user), and at most one owner membership per organization.
type Store interface {
	// Organizations
	CreateOrganizationWithOwner(org *models.Organization, owner *models.Membership) error
	GetOrganization(id uuid.UUID) (*models.Organization, error)
	UpdateOrganization(org *models.Organization) error
	DeleteOrganization(id uuid.UUID) error
	ListOrganizationsForUser(userID uuid.UUID) ([]models.Organization, error)

	// Memberships
	GetMembership(orgID, userID uuid.UUID) (*models.Membership, error)
	GetMembershipByID(orgID, membershipID uuid.UUID) (*models.Membership, error)
	ListMemberships(orgID uuid.UUID) ([]models.Membership, error)
	CountMemberships(orgID uuid.UUID) (int64, error)
	HasMemberWithEmail(orgID uuid.UUID, email string) (bool, error)
	CreateMembership(m *models.Membership) error
	UpdateMembershipRole(membershipID uuid.UUID, role permission.Role) error
	DeleteMembership(membershipID uuid.UUID) error

	// Invitations
	GetInvitation(id uuid.UUID) (*models.Invitation, error)
	GetInvitationByToken(token string) (*models.Invitation, error)
	ListPendingInvitationsForOrg(orgID uuid.UUID) ([]models.Invitation, error)
	ListPendingInvitationsForEmail(email string) ([]models.Invitation, error)
	HasPendingInvitation(orgID uuid.UUID, email string) (bool, error)
	// HasAcceptedInvitationSince reports whether an invitation for the given
	// organization and email was accepted at or after the given time. Used to
	// tell stale duplicate invitations from genuine re-invitations.
	HasAcceptedInvitationSince(orgID uuid.UUID, email string, since time.Time) (bool, error)
	CreateInvitation(inv *models.Invitation) error
	UpdateInvitationStatus(id uuid.UUID, status models.InvitationStatus) error
	// SweepPendingInvitations marks every pending invitation for the given
	// organization and email as accepted. Idempotent.
	SweepPendingInvitations(orgID uuid.UUID, email string) error

	// Audit
	InsertAuditLog(entry *notification.AuditLog) error
}
