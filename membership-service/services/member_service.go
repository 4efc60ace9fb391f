package services

import (
	"fmt"

	"github.com/google/uuid"

	"orghub-backend/shared/database/models"
	"orghub-backend/shared/utils/apperrors"
	"orghub-backend/shared/utils/permission"
)

// ChangeRole changes a member's role. Promotion to owner is always refused
// here; ownership moves only through TransferOwnership.
func (s *Service) ChangeRole(actor Actor, orgID, memberID uuid.UUID, newRoleStr string) (*models.Membership, error) {
	newRole, err := permission.ParseRole(newRoleStr)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	org, err := s.store.GetOrganization(orgID)
	if err != nil {
		return nil, err
	}
	actorMembership, err := s.requireMembership(orgID, actor.ID)
	if err != nil {
		return nil, err
	}
	target, err := s.store.GetMembershipByID(orgID, memberID)
	if err != nil {
		return nil, err
	}

	if decision := permission.CanChangeRole(actorMembership.Role, target.Role, newRole); !decision.Allowed {
		return nil, apperrors.NotAuthorized(decision.Reason)
	}

	oldRole := target.Role
	if oldRole == newRole {
		return target, nil
	}

	if err := s.store.UpdateMembershipRole(target.ID, newRole); err != nil {
		return nil, err
	}
	target.Role = newRole

	s.audit(orgID, actor.ID, &target.UserID, "role_changed",
		fmt.Sprintf("role of %s changed from %s to %s", target.UserEmail, oldRole, newRole))
	s.notifier.RoleChanged(org, target, oldRole)
	return target, nil
}

// RemoveMember removes a member from the organization. Members other than the
// owner may remove themselves; the owner must transfer ownership first.
func (s *Service) RemoveMember(actor Actor, orgID, memberID uuid.UUID) error {
	org, err := s.store.GetOrganization(orgID)
	if err != nil {
		return err
	}
	actorMembership, err := s.requireMembership(orgID, actor.ID)
	if err != nil {
		return err
	}
	target, err := s.store.GetMembershipByID(orgID, memberID)
	if err != nil {
		return err
	}

	decision := permission.CanRemoveMember(actor.ID, actorMembership.Role, target.UserID, target.Role)
	if !decision.Allowed {
		return apperrors.NotAuthorized(decision.Reason)
	}

	if err := s.store.DeleteMembership(target.ID); err != nil {
		return err
	}

	s.audit(orgID, actor.ID, &target.UserID, "member_removed",
		fmt.Sprintf("%s removed from %q", target.UserEmail, org.Name))
	s.notifier.MemberRemoved(org, target)
	return nil
}
