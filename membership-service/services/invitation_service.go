package services

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"orghub-backend/shared/database/models"
	"orghub-backend/shared/utils/apperrors"
	utils "orghub-backend/shared/utils/auth"
	"orghub-backend/shared/utils/permission"
)

// Invite creates a pending invitation for an email address and dispatches the
// invitation email. Owners may invite admins, users and viewers; admins may
// invite users and viewers only.
func (s *Service) Invite(actor Actor, orgID uuid.UUID, email, roleStr string) (*models.Invitation, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	role, err := permission.ParseInvitableRole(roleStr)
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
	if decision := permission.CanInvite(actorMembership.Role); !decision.Allowed {
		return nil, apperrors.NotAuthorized(decision.Reason)
	}
	if decision := permission.CanInviteRole(actorMembership.Role, role); !decision.Allowed {
		return nil, apperrors.NotAuthorized(decision.Reason)
	}

	alreadyMember, err := s.store.HasMemberWithEmail(orgID, email)
	if err != nil {
		return nil, err
	}
	if alreadyMember {
		return nil, apperrors.Conflict("this email already belongs to a member of the organization")
	}

	pending, err := s.store.HasPendingInvitation(orgID, email)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperrors.Conflict("a pending invitation already exists for this email")
	}

	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}

	now := s.now()
	inv := &models.Invitation{
		OrganizationID: orgID,
		InviterID:      actor.ID,
		InviterEmail:   actor.Email,
		InviteeEmail:   email,
		Role:           role,
		Status:         models.InvitationStatusPending,
		Token:          token,
		ExpiresAt:      now.Add(models.InvitationTTL),
	}
	if err := s.store.CreateInvitation(inv); err != nil {
		return nil, err
	}

	s.audit(orgID, actor.ID, nil, "invitation_created",
		fmt.Sprintf("%s invited to %q as %s", email, org.Name, role))
	s.notifier.InvitationCreated(org, inv)
	return inv, nil
}

// AcceptInvitation accepts an invitation by id
func (s *Service) AcceptInvitation(actor Actor, invitationID uuid.UUID) (*models.Organization, error) {
	inv, err := s.store.GetInvitation(invitationID)
	if err != nil {
		return nil, err
	}
	return s.accept(actor, inv)
}

// AcceptInvitationByToken accepts an invitation via the token carried by the
// emailed accept link
func (s *Service) AcceptInvitationByToken(actor Actor, token string) (*models.Organization, error) {
	if token == "" {
		return nil, apperrors.Validation("token is required")
	}
	inv, err := s.store.GetInvitationByToken(token)
	if err != nil {
		return nil, err
	}
	return s.accept(actor, inv)
}

// accept runs the acceptance sequence for a located invitation:
//
//  1. reject mismatched emails and expired invitations (flipping the status
//     on time-based expiry);
//  2. if the actor is already a member, sweep the pending invitations for
//     this (organization, email) and report success without a new membership;
//  3. otherwise create the membership, then mark this invitation accepted
//     (mandatory: failure here is critical because the membership already
//     exists and is not rolled back), then sweep any other pending
//     invitations for the same pair.
//
// Re-running the sequence is safe: re-creating the membership hits the
// (organization, user) uniqueness constraint and is treated as the
// already-a-member success path, and re-marking accepted invitations touches
// no rows.
func (s *Service) accept(actor Actor, inv *models.Invitation) (*models.Organization, error) {
	if !inv.EmailMatches(actor.Email) {
		return nil, apperrors.NotAuthorized("this invitation was issued to a different email address")
	}

	switch inv.Status {
	case models.InvitationStatusAccepted:
		// Idempotent re-acceptance.
		return s.store.GetOrganization(inv.OrganizationID)
	case models.InvitationStatusExpired:
		return nil, apperrors.Expired("invitation has expired")
	}

	if inv.IsExpired(s.now()) {
		if err := s.store.UpdateInvitationStatus(inv.ID, models.InvitationStatusExpired); err != nil {
			log.Printf("⚠️ Failed to expire invitation %s: %v", inv.ID, err)
		}
		return nil, apperrors.Expired("invitation has expired")
	}

	org, err := s.store.GetOrganization(inv.OrganizationID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetMembership(inv.OrganizationID, actor.ID)
	if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		if err := s.store.SweepPendingInvitations(inv.OrganizationID, inv.InviteeEmail); err != nil {
			log.Printf("⚠️ Invitation sweep failed for org=%s email=%s: %v", inv.OrganizationID, inv.InviteeEmail, err)
		}
		return org, nil
	}

	member := &models.Membership{
		OrganizationID: inv.OrganizationID,
		UserID:         actor.ID,
		UserEmail:      actor.Email,
		Role:           inv.Role,
		JoinedAt:       s.now(),
	}
	if err := s.store.CreateMembership(member); err != nil {
		if apperrors.IsKind(err, apperrors.KindConflict) {
			// A concurrent acceptance won; same outcome as already a member.
			if sweepErr := s.store.SweepPendingInvitations(inv.OrganizationID, inv.InviteeEmail); sweepErr != nil {
				log.Printf("⚠️ Invitation sweep failed for org=%s email=%s: %v", inv.OrganizationID, inv.InviteeEmail, sweepErr)
			}
			return org, nil
		}
		return nil, err
	}

	// Marking the accepted invitation is mandatory. The membership above is
	// not rolled back on failure, so this partial state must be surfaced
	// loudly rather than retried quietly.
	if err := s.store.UpdateInvitationStatus(inv.ID, models.InvitationStatusAccepted); err != nil {
		log.Printf("🚨 CRITICAL: membership %s created but invitation %s could not be marked accepted: %v",
			member.ID, inv.ID, err)
		return nil, apperrors.Critical(
			"membership was created but the invitation could not be marked as accepted; contact support", err)
	}

	if err := s.store.SweepPendingInvitations(inv.OrganizationID, inv.InviteeEmail); err != nil {
		log.Printf("⚠️ Invitation sweep failed for org=%s email=%s: %v", inv.OrganizationID, inv.InviteeEmail, err)
	}

	s.audit(inv.OrganizationID, actor.ID, &actor.ID, "invitation_accepted",
		fmt.Sprintf("%s joined %q as %s", actor.Email, org.Name, inv.Role))
	s.notifier.MemberJoined(org, member)
	return org, nil
}

// DeclineInvitation declines a pending invitation addressed to the actor
func (s *Service) DeclineInvitation(actor Actor, invitationID uuid.UUID) error {
	inv, err := s.store.GetInvitation(invitationID)
	if err != nil {
		return err
	}
	if !inv.EmailMatches(actor.Email) {
		return apperrors.NotAuthorized("this invitation was issued to a different email address")
	}
	if inv.Status != models.InvitationStatusPending {
		return apperrors.Conflict("invitation is no longer pending")
	}

	if err := s.store.UpdateInvitationStatus(inv.ID, models.InvitationStatusExpired); err != nil {
		return err
	}

	s.audit(inv.OrganizationID, actor.ID, nil, "invitation_declined",
		fmt.Sprintf("invitation to %s declined", inv.InviteeEmail))
	return nil
}

// CancelInvitation cancels a pending invitation. Allowed for the original
// inviter and for owners and admins of the organization.
func (s *Service) CancelInvitation(actor Actor, orgID, invitationID uuid.UUID) error {
	inv, err := s.store.GetInvitation(invitationID)
	if err != nil {
		return err
	}
	if inv.OrganizationID != orgID {
		return apperrors.NotFound("invitation not found")
	}
	if inv.Status != models.InvitationStatusPending {
		return apperrors.Conflict("invitation is no longer pending")
	}

	actorMembership, err := s.requireMembership(orgID, actor.ID)
	if err != nil {
		return err
	}
	decision := permission.CanCancelInvitation(actor.ID, actorMembership.Role, inv.InviterID)
	if !decision.Allowed {
		return apperrors.NotAuthorized(decision.Reason)
	}

	if err := s.store.UpdateInvitationStatus(inv.ID, models.InvitationStatusExpired); err != nil {
		return err
	}

	s.audit(orgID, actor.ID, nil, "invitation_cancelled",
		fmt.Sprintf("invitation to %s cancelled", inv.InviteeEmail))
	return nil
}

// ListPendingInvitations returns the invitations the actor can still act on:
// pending, not past expiry, for organizations the actor is not already a
// member of. A pending invitation that predates an acceptance for the same
// organization is a stale duplicate and is hidden, so a removed-then-reinvited
// user sees only their genuinely new invitation, never a ghost of the old one.
func (s *Service) ListPendingInvitations(actor Actor) ([]models.Invitation, error) {
	invitations, err := s.store.ListPendingInvitationsForEmail(actor.Email)
	if err != nil {
		return nil, err
	}

	now := s.now()
	visible := make([]models.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		if inv.IsExpired(now) {
			continue
		}
		if _, err := s.store.GetMembership(inv.OrganizationID, actor.ID); err == nil {
			continue
		} else if !apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, err
		}
		acceptedLater, err := s.store.HasAcceptedInvitationSince(inv.OrganizationID, actor.Email, inv.CreatedAt)
		if err != nil {
			return nil, err
		}
		if acceptedLater {
			continue
		}
		visible = append(visible, inv)
	}
	return visible, nil
}

// ListOrganizationInvitations returns the pending invitations of an
// organization; owner or admin only
func (s *Service) ListOrganizationInvitations(actor Actor, orgID uuid.UUID) ([]models.Invitation, error) {
	if _, err := s.store.GetOrganization(orgID); err != nil {
		return nil, err
	}
	actorMembership, err := s.requireMembership(orgID, actor.ID)
	if err != nil {
		return nil, err
	}
	if decision := permission.CanInvite(actorMembership.Role); !decision.Allowed {
		return nil, apperrors.NotAuthorized(decision.Reason)
	}
	return s.store.ListPendingInvitationsForOrg(orgID)
}
