package services

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"orghub-backend/shared/database/models"
	"orghub-backend/shared/utils/apperrors"
	"orghub-backend/shared/utils/permission"
)

// TransferOwnership makes the target member the organization's owner and
// demotes the current owner to admin.
//
// The two role updates are ordered demote-then-promote so the partial unique
// index on (organization_id) where role='owner' is never asked to hold two
// owners. If the promotion fails after the demotion succeeded, a compensating
// rollback restores the original owner; if that rollback also fails the
// organization is ownerless and the error is surfaced as critical.
func (s *Service) TransferOwnership(actor Actor, orgID, newOwnerMemberID uuid.UUID) (*models.Membership, error) {
	org, err := s.store.GetOrganization(orgID)
	if err != nil {
		return nil, err
	}
	actorMembership, err := s.requireMembership(orgID, actor.ID)
	if err != nil {
		return nil, err
	}
	target, err := s.store.GetMembershipByID(orgID, newOwnerMemberID)
	if err != nil {
		return nil, err
	}

	decision := permission.CanTransferOwnership(actorMembership.Role, actor.ID, target.UserID)
	if !decision.Allowed {
		return nil, apperrors.NotAuthorized(decision.Reason)
	}

	// Step 1: demote the current owner.
	if err := s.store.UpdateMembershipRole(actorMembership.ID, permission.RoleAdmin); err != nil {
		return nil, err
	}

	// Step 2: promote the target.
	if err := s.store.UpdateMembershipRole(target.ID, permission.RoleOwner); err != nil {
		if rollbackErr := s.store.UpdateMembershipRole(actorMembership.ID, permission.RoleOwner); rollbackErr != nil {
			log.Printf("🚨 CRITICAL: organization %s left ownerless: promote failed (%v), rollback failed (%v)",
				orgID, err, rollbackErr)
			return nil, apperrors.Critical(
				fmt.Sprintf("ownership transfer failed and the rollback failed; organization %s has no owner and requires manual remediation", orgID),
				rollbackErr)
		}
		return nil, err
	}
	target.Role = permission.RoleOwner

	s.audit(orgID, actor.ID, &target.UserID, "ownership_transferred",
		fmt.Sprintf("ownership of %q transferred from %s to %s", org.Name, actorMembership.UserEmail, target.UserEmail))
	formerOwner := *actorMembership
	formerOwner.Role = permission.RoleAdmin
	s.notifier.OwnershipTransferred(org, &formerOwner, target)
	return target, nil
}
