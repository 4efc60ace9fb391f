package services

import (
	"fmt"

	"github.com/google/uuid"

	"orghub-backend/shared/database/models"
	"orghub-backend/shared/utils/apperrors"
	utils "orghub-backend/shared/utils/auth"
	"orghub-backend/shared/utils/permission"
)

// CreateOrganization creates an organization with the actor as its sole
// owner. The organization and the owner membership are committed in one
// transaction, so there is no instant at which the organization exists
// without an owner.
func (s *Service) CreateOrganization(actor Actor, name, description string) (*models.Organization, error) {
	if err := utils.ValidateRequired(name, "name"); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := utils.ValidateLength(name, "name", 2, 200); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	org := &models.Organization{
		Name:        name,
		Description: description,
	}
	owner := &models.Membership{
		UserID:    actor.ID,
		UserEmail: actor.Email,
		Role:      permission.RoleOwner,
		JoinedAt:  s.now(),
	}

	if err := s.store.CreateOrganizationWithOwner(org, owner); err != nil {
		return nil, err
	}

	s.audit(org.ID, actor.ID, nil, "organization_created", fmt.Sprintf("organization %q created", org.Name))
	return org, nil
}

// GetOrganization returns the organization if the actor is a member
func (s *Service) GetOrganization(actor Actor, orgID uuid.UUID) (*models.Organization, error) {
	org, err := s.store.GetOrganization(orgID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMembership(orgID, actor.ID); err != nil {
		return nil, err
	}
	return org, nil
}

// ListOrganizations returns the organizations the actor belongs to
func (s *Service) ListOrganizations(actor Actor) ([]models.Organization, error) {
	return s.store.ListOrganizationsForUser(actor.ID)
}

// UpdateOrganization updates name and description; owner or admin only
func (s *Service) UpdateOrganization(actor Actor, orgID uuid.UUID, name, description string) (*models.Organization, error) {
	org, err := s.store.GetOrganization(orgID)
	if err != nil {
		return nil, err
	}
	membership, err := s.requireMembership(orgID, actor.ID)
	if err != nil {
		return nil, err
	}
	if decision := permission.CanUpdateOrganization(membership.Role); !decision.Allowed {
		return nil, apperrors.NotAuthorized(decision.Reason)
	}

	if name != "" {
		if err := utils.ValidateLength(name, "name", 2, 200); err != nil {
			return nil, apperrors.Validation(err.Error())
		}
		org.Name = name
	}
	if description != "" {
		org.Description = description
	}

	if err := s.store.UpdateOrganization(org); err != nil {
		return nil, err
	}

	s.audit(org.ID, actor.ID, nil, "organization_updated", fmt.Sprintf("organization %q updated", org.Name))
	return org, nil
}

// DeleteOrganization deletes the organization; owner only. Memberships and
// invitations are removed with it.
func (s *Service) DeleteOrganization(actor Actor, orgID uuid.UUID) error {
	org, err := s.store.GetOrganization(orgID)
	if err != nil {
		return err
	}
	membership, err := s.requireMembership(orgID, actor.ID)
	if err != nil {
		return err
	}
	if decision := permission.CanDeleteOrganization(membership.Role); !decision.Allowed {
		return apperrors.NotAuthorized(decision.Reason)
	}

	// Member list is fetched before the cascade so departing members can
	// still be notified.
	members, err := s.store.ListMemberships(orgID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteOrganization(orgID); err != nil {
		return err
	}

	s.audit(orgID, actor.ID, nil, "organization_deleted", fmt.Sprintf("organization %q deleted", org.Name))
	s.notifier.OrganizationDeleted(org, members)
	return nil
}

// SetOrganizationLogo stores the object key of the uploaded logo; owner or
// admin only. The previous key is returned so the caller can remove the old
// object from storage.
func (s *Service) SetOrganizationLogo(actor Actor, orgID uuid.UUID, logoKey string) (previousKey string, err error) {
	org, err := s.store.GetOrganization(orgID)
	if err != nil {
		return "", err
	}
	membership, err := s.requireMembership(orgID, actor.ID)
	if err != nil {
		return "", err
	}
	if decision := permission.CanUpdateOrganization(membership.Role); !decision.Allowed {
		return "", apperrors.NotAuthorized(decision.Reason)
	}

	previousKey = org.LogoKey
	org.LogoKey = logoKey
	if err := s.store.UpdateOrganization(org); err != nil {
		return "", err
	}
	return previousKey, nil
}

// ListMembers returns the members of an organization the actor belongs to
func (s *Service) ListMembers(actor Actor, orgID uuid.UUID) ([]models.Membership, error) {
	if _, err := s.store.GetOrganization(orgID); err != nil {
		return nil, err
	}
	if _, err := s.requireMembership(orgID, actor.ID); err != nil {
		return nil, err
	}
	return s.store.ListMemberships(orgID)
}
