package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"orghub-backend/shared/database/models"
	"orghub-backend/shared/database/models/notification"
	"orghub-backend/shared/utils/apperrors"
	"orghub-backend/shared/utils/permission"
)

// GormStore implements Store on top of a GORM connection
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by the given database connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translateErr(err error, notFoundMsg, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(notFoundMsg)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict(conflictMsg)
	}
	return err
}

// CreateOrganizationWithOwner creates the organization and its owner
// membership in one transaction, so an organization is never observable
// without an owner.
func (s *GormStore) CreateOrganizationWithOwner(org *models.Organization, owner *models.Membership) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return translateErr(err, "organization not found", "organization already exists")
		}
		owner.OrganizationID = org.ID
		if err := tx.Create(owner).Error; err != nil {
			return translateErr(err, "membership not found", "owner membership already exists")
		}
		return nil
	})
}

func (s *GormStore) GetOrganization(id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := s.db.First(&org, "id = ?", id).Error; err != nil {
		return nil, translateErr(err, "organization not found", "")
	}
	return &org, nil
}

func (s *GormStore) UpdateOrganization(org *models.Organization) error {
	return translateErr(s.db.Save(org).Error, "organization not found", "organization already exists")
}

// DeleteOrganization removes the organization together with its memberships
// and invitations
func (s *GormStore) DeleteOrganization(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", id).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Organization{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("organization not found")
		}
		return nil
	})
}

func (s *GormStore) ListOrganizationsForUser(userID uuid.UUID) ([]models.Organization, error) {
	var orgs []models.Organization
	err := s.db.
		Joins("JOIN memberships ON memberships.organization_id = organizations.id").
		Where("memberships.user_id = ?", userID).
		Order("organizations.created_at DESC").
		Find(&orgs).Error
	return orgs, err
}

func (s *GormStore) GetMembership(orgID, userID uuid.UUID) (*models.Membership, error) {
	var m models.Membership
	err := s.db.First(&m, "organization_id = ? AND user_id = ?", orgID, userID).Error
	if err != nil {
		return nil, translateErr(err, "membership not found", "")
	}
	return &m, nil
}

func (s *GormStore) GetMembershipByID(orgID, membershipID uuid.UUID) (*models.Membership, error) {
	var m models.Membership
	err := s.db.First(&m, "id = ? AND organization_id = ?", membershipID, orgID).Error
	if err != nil {
		return nil, translateErr(err, "member not found", "")
	}
	return &m, nil
}

func (s *GormStore) ListMemberships(orgID uuid.UUID) ([]models.Membership, error) {
	var memberships []models.Membership
	err := s.db.Where("organization_id = ?", orgID).Order("joined_at ASC").Find(&memberships).Error
	return memberships, err
}

func (s *GormStore) CountMemberships(orgID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Membership{}).Where("organization_id = ?", orgID).Count(&count).Error
	return count, err
}

func (s *GormStore) HasMemberWithEmail(orgID uuid.UUID, email string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Membership{}).
		Where("organization_id = ? AND LOWER(user_email) = LOWER(?)", orgID, email).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) CreateMembership(m *models.Membership) error {
	return translateErr(s.db.Create(m).Error, "membership not found", "user is already a member of this organization")
}

// UpdateMembershipRole changes a single membership's role. Promotions to
// owner go through the partial unique index on (organization_id) where
// role='owner'; a second owner surfaces as a conflict.
func (s *GormStore) UpdateMembershipRole(membershipID uuid.UUID, role permission.Role) error {
	result := s.db.Model(&models.Membership{}).
		Where("id = ?", membershipID).
		Update("role", role)
	if result.Error != nil {
		return translateErr(result.Error, "member not found", "organization already has an owner")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("member not found")
	}
	return nil
}

func (s *GormStore) DeleteMembership(membershipID uuid.UUID) error {
	result := s.db.Delete(&models.Membership{}, "id = ?", membershipID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("member not found")
	}
	return nil
}

func (s *GormStore) GetInvitation(id uuid.UUID) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.db.First(&inv, "id = ?", id).Error; err != nil {
		return nil, translateErr(err, "invitation not found", "")
	}
	return &inv, nil
}

func (s *GormStore) GetInvitationByToken(token string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.db.First(&inv, "token = ?", token).Error; err != nil {
		return nil, translateErr(err, "invitation not found", "")
	}
	return &inv, nil
}

func (s *GormStore) ListPendingInvitationsForOrg(orgID uuid.UUID) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := s.db.
		Where("organization_id = ? AND status = ?", orgID, models.InvitationStatusPending).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

func (s *GormStore) ListPendingInvitationsForEmail(email string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := s.db.
		Where("LOWER(invitee_email) = LOWER(?) AND status = ?", email, models.InvitationStatusPending).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

func (s *GormStore) HasPendingInvitation(orgID uuid.UUID, email string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Invitation{}).
		Where("organization_id = ? AND LOWER(invitee_email) = LOWER(?) AND status = ?",
			orgID, email, models.InvitationStatusPending).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) HasAcceptedInvitationSince(orgID uuid.UUID, email string, since time.Time) (bool, error) {
	var count int64
	err := s.db.Model(&models.Invitation{}).
		Where("organization_id = ? AND LOWER(invitee_email) = LOWER(?) AND status = ? AND updated_at >= ?",
			orgID, email, models.InvitationStatusAccepted, since).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) CreateInvitation(inv *models.Invitation) error {
	return translateErr(s.db.Create(inv).Error, "invitation not found", "a pending invitation already exists for this email")
}

func (s *GormStore) UpdateInvitationStatus(id uuid.UUID, status models.InvitationStatus) error {
	result := s.db.Model(&models.Invitation{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("invitation not found")
	}
	return nil
}

// SweepPendingInvitations bulk-marks pending invitations for (org, email) as
// accepted. Re-running it after a crash touches no rows, which makes the
// acceptance sequence safe to replay.
func (s *GormStore) SweepPendingInvitations(orgID uuid.UUID, email string) error {
	return s.db.Model(&models.Invitation{}).
		Where("organization_id = ? AND LOWER(invitee_email) = LOWER(?) AND status = ?",
			orgID, email, models.InvitationStatusPending).
		Update("status", models.InvitationStatusAccepted).Error
}

func (s *GormStore) InsertAuditLog(entry *notification.AuditLog) error {
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}
