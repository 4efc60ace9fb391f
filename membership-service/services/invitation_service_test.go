package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"orghub-backend/shared/database/models"
	"orghub-backend/shared/utils/apperrors"
	"orghub-backend/shared/utils/permission"
)

func TestInviteCreatesPendingInvitation(t *testing.T) {
	st := newFakeStore()
	svc, notifier := newTestService(st)
	ownerID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")

	inv, err := svc.Invite(Actor{ID: ownerID, Email: "owner@acme.com"}, org.ID, "admin@x.com", "admin")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if inv.Status != models.InvitationStatusPending {
		t.Fatalf("expected pending status, got %s", inv.Status)
	}
	if inv.Role != permission.RoleAdmin {
		t.Fatalf("expected admin role, got %s", inv.Role)
	}
	if inv.Token == "" {
		t.Fatal("expected a token")
	}
	wantExpiry := svc.now().Add(models.InvitationTTL)
	if !inv.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected expiry %v, got %v", wantExpiry, inv.ExpiresAt)
	}
	if !notifier.has("invitation_created:admin@x.com") {
		t.Fatal("expected invitation email dispatch")
	}
}

func TestInvitePermissionRules(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	adminID := uuid.New()
	userID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")
	seedMember(st, org.ID, adminID, "admin@acme.com", permission.RoleAdmin)
	seedMember(st, org.ID, userID, "user@acme.com", permission.RoleUser)

	// Regular members cannot invite at all.
	_, err := svc.Invite(Actor{ID: userID, Email: "user@acme.com"}, org.ID, "new@x.com", "viewer")
	if !apperrors.IsKind(err, apperrors.KindNotAuthorized) {
		t.Fatalf("expected not_authorized, got %v", err)
	}

	// Admins cannot invite other admins.
	_, err = svc.Invite(Actor{ID: adminID, Email: "admin@acme.com"}, org.ID, "new@x.com", "admin")
	if !apperrors.IsKind(err, apperrors.KindNotAuthorized) {
		t.Fatalf("expected not_authorized, got %v", err)
	}

	// Nobody can invite an owner.
	_, err = svc.Invite(Actor{ID: ownerID, Email: "owner@acme.com"}, org.ID, "new@x.com", "owner")
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error for owner role, got %v", err)
	}

	// Admins can invite users and viewers.
	if _, err := svc.Invite(Actor{ID: adminID, Email: "admin@acme.com"}, org.ID, "new@x.com", "viewer"); err != nil {
		t.Fatalf("admin inviting viewer: %v", err)
	}
}

func TestInviteRejectsExistingMemberAndDuplicates(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")
	actor := Actor{ID: ownerID, Email: "owner@acme.com"}

	_, err := svc.Invite(actor, org.ID, "Owner@Acme.com", "viewer")
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict for existing member (case-insensitive), got %v", err)
	}

	if _, err := svc.Invite(actor, org.ID, "new@x.com", "user"); err != nil {
		t.Fatalf("first invite: %v", err)
	}
	_, err = svc.Invite(actor, org.ID, "new@x.com", "user")
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict for duplicate pending invitation, got %v", err)
	}

	_, err = svc.Invite(actor, org.ID, "not-an-email", "user")
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAcceptByTokenCreatesMembership(t *testing.T) {
	st := newFakeStore()
	svc, notifier := newTestService(st)
	ownerID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")

	inv, err := svc.Invite(Actor{ID: ownerID, Email: "owner@acme.com"}, org.ID, "admin@x.com", "admin")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	inviteeID := uuid.New()
	// Token path matches the email case-insensitively.
	gotOrg, err := svc.AcceptInvitationByToken(Actor{ID: inviteeID, Email: "Admin@X.com"}, inv.Token)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if gotOrg.ID != org.ID {
		t.Fatalf("expected org %s, got %s", org.ID, gotOrg.ID)
	}

	member, err := st.GetMembership(org.ID, inviteeID)
	if err != nil {
		t.Fatalf("membership not created: %v", err)
	}
	if member.Role != permission.RoleAdmin {
		t.Fatalf("expected admin role, got %s", member.Role)
	}

	stored, _ := st.GetInvitation(inv.ID)
	if stored.Status != models.InvitationStatusAccepted {
		t.Fatalf("expected accepted status, got %s", stored.Status)
	}

	count, _ := st.CountMemberships(org.ID)
	if count != 2 {
		t.Fatalf("expected 2 members, got %d", count)
	}
	if !notifier.has("member_joined:Admin@X.com") {
		t.Fatal("expected member_joined event")
	}
}

func TestAcceptIsIdempotent(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")

	inv, err := svc.Invite(Actor{ID: ownerID, Email: "owner@acme.com"}, org.ID, "user@x.com", "user")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	invitee := Actor{ID: uuid.New(), Email: "user@x.com"}
	if _, err := svc.AcceptInvitationByToken(invitee, inv.Token); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	gotOrg, err := svc.AcceptInvitationByToken(invitee, inv.Token)
	if err != nil {
		t.Fatalf("second accept must succeed: %v", err)
	}
	if gotOrg.ID != org.ID {
		t.Fatalf("expected org %s, got %s", org.ID, gotOrg.ID)
	}

	count, _ := st.CountMemberships(org.ID)
	if count != 2 {
		t.Fatalf("accepting twice must create exactly one membership, got %d members", count)
	}
}

func TestAcceptSweepsOtherPendingInvitations(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	adminID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")
	seedMember(st, org.ID, adminID, "admin@acme.com", permission.RoleAdmin)

	// Two invitations for the same email: one from the owner, one seeded
	// directly to bypass the duplicate-pending check.
	first, err := svc.Invite(Actor{ID: ownerID, Email: "owner@acme.com"}, org.ID, "dup@x.com", "user")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	second := &models.Invitation{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		InviterID:      adminID,
		InviteeEmail:   "dup@x.com",
		Role:           permission.RoleViewer,
		Status:         models.InvitationStatusPending,
		Token:          "stray-token",
		ExpiresAt:      svc.now().Add(models.InvitationTTL),
		CreatedAt:      svc.now(),
	}
	st.invitations[second.ID] = second

	if _, err := svc.AcceptInvitationByToken(Actor{ID: uuid.New(), Email: "dup@x.com"}, first.Token); err != nil {
		t.Fatalf("accept: %v", err)
	}

	stored, _ := st.GetInvitation(second.ID)
	if stored.Status != models.InvitationStatusAccepted {
		t.Fatalf("sweep must mark the duplicate accepted, got %s", stored.Status)
	}
}

func TestAcceptShortCircuitsForExistingMember(t *testing.T) {
	st := newFakeStore()
	svc, notifier := newTestService(st)
	ownerID := uuid.New()
	memberID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")
	seedMember(st, org.ID, memberID, "member@x.com", permission.RoleUser)

	inv := &models.Invitation{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		InviterID:      ownerID,
		InviteeEmail:   "member@x.com",
		Role:           permission.RoleViewer,
		Status:         models.InvitationStatusPending,
		Token:          "member-token",
		ExpiresAt:      svc.now().Add(time.Hour),
		CreatedAt:      svc.now(),
	}
	st.invitations[inv.ID] = inv

	gotOrg, err := svc.AcceptInvitation(Actor{ID: memberID, Email: "member@x.com"}, inv.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if gotOrg.ID != org.ID {
		t.Fatalf("expected org id in short-circuit response")
	}

	// Role must not change and no extra membership may appear.
	member, _ := st.GetMembership(org.ID, memberID)
	if member.Role != permission.RoleUser {
		t.Fatalf("existing role must be untouched, got %s", member.Role)
	}
	count, _ := st.CountMemberships(org.ID)
	if count != 2 {
		t.Fatalf("expected 2 members, got %d", count)
	}
	stored, _ := st.GetInvitation(inv.ID)
	if stored.Status != models.InvitationStatusAccepted {
		t.Fatalf("invitation must be swept to accepted, got %s", stored.Status)
	}
	if notifier.has("member_joined:member@x.com") {
		t.Fatal("no join event for an existing member")
	}
}

func TestAcceptExpiredInvitation(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")

	inv := &models.Invitation{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		InviterID:      ownerID,
		InviteeEmail:   "late@x.com",
		Role:           permission.RoleUser,
		Status:         models.InvitationStatusPending,
		Token:          "late-token",
		ExpiresAt:      svc.now().Add(-time.Hour),
		CreatedAt:      svc.now().Add(-8 * 24 * time.Hour),
	}
	st.invitations[inv.ID] = inv

	actor := Actor{ID: uuid.New(), Email: "late@x.com"}
	_, err := svc.AcceptInvitationByToken(actor, inv.Token)
	if !apperrors.IsKind(err, apperrors.KindExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}

	stored, _ := st.GetInvitation(inv.ID)
	if stored.Status != models.InvitationStatusExpired {
		t.Fatalf("invitation must flip to expired, got %s", stored.Status)
	}

	// And it must never show up as pending again.
	visible, err := svc.ListPendingInvitations(actor)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("expired invitation must not be listed, got %d", len(visible))
	}
}

func TestAcceptEmailMismatch(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")

	inv, err := svc.Invite(Actor{ID: ownerID, Email: "owner@acme.com"}, org.ID, "right@x.com", "user")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	_, err = svc.AcceptInvitationByToken(Actor{ID: uuid.New(), Email: "wrong@x.com"}, inv.Token)
	if !apperrors.IsKind(err, apperrors.KindNotAuthorized) {
		t.Fatalf("expected not_authorized, got %v", err)
	}
}

func TestAcceptFlagFailureIsCritical(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")

	inv, err := svc.Invite(Actor{ID: ownerID, Email: "owner@acme.com"}, org.ID, "user@x.com", "user")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	st.updateInvitationStatusFunc = func(id uuid.UUID, status models.InvitationStatus) error {
		return errors.New("write timeout")
	}

	inviteeID := uuid.New()
	_, err = svc.AcceptInvitationByToken(Actor{ID: inviteeID, Email: "user@x.com"}, inv.Token)
	if !apperrors.IsKind(err, apperrors.KindCritical) {
		t.Fatalf("expected critical error, got %v", err)
	}

	// The membership exists despite the failure; this is the documented
	// partial state that support has to reconcile.
	if _, err := st.GetMembership(org.ID, inviteeID); err != nil {
		t.Fatalf("membership should exist after critical failure: %v", err)
	}
}

func TestDeclineInvitation(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")

	inv, err := svc.Invite(Actor{ID: ownerID, Email: "owner@acme.com"}, org.ID, "user@x.com", "user")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	invitee := Actor{ID: uuid.New(), Email: "user@x.com"}
	if err := svc.DeclineInvitation(invitee, inv.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}

	stored, _ := st.GetInvitation(inv.ID)
	if stored.Status != models.InvitationStatusExpired {
		t.Fatalf("declined invitation must be expired, got %s", stored.Status)
	}

	// Declining again is a conflict, not a silent success.
	err = svc.DeclineInvitation(invitee, inv.ID)
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCancelInvitation(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	adminID := uuid.New()
	userID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")
	seedMember(st, org.ID, adminID, "admin@acme.com", permission.RoleAdmin)
	seedMember(st, org.ID, userID, "user@acme.com", permission.RoleUser)

	inv, err := svc.Invite(Actor{ID: adminID, Email: "admin@acme.com"}, org.ID, "new@x.com", "user")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	// A regular member who is not the inviter cannot cancel.
	err = svc.CancelInvitation(Actor{ID: userID, Email: "user@acme.com"}, org.ID, inv.ID)
	if !apperrors.IsKind(err, apperrors.KindNotAuthorized) {
		t.Fatalf("expected not_authorized, got %v", err)
	}

	// Wrong organization id: not found, no cross-org cancellation.
	otherOrg, _ := seedOrg(st, "Other", uuid.New(), "other@x.com")
	err = svc.CancelInvitation(Actor{ID: ownerID, Email: "owner@acme.com"}, otherOrg.ID, inv.ID)
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}

	// The inviter can cancel their own invitation.
	if err := svc.CancelInvitation(Actor{ID: adminID, Email: "admin@acme.com"}, org.ID, inv.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	stored, _ := st.GetInvitation(inv.ID)
	if stored.Status != models.InvitationStatusExpired {
		t.Fatalf("cancelled invitation must be expired, got %s", stored.Status)
	}
}

func TestListPendingInvitationsHidesGhostsAfterReinvite(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")
	owner := Actor{ID: ownerID, Email: "owner@acme.com"}

	// First cycle: invite, accept, then remove the member.
	first, err := svc.Invite(owner, org.ID, "cycle@x.com", "user")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	invitee := Actor{ID: uuid.New(), Email: "cycle@x.com"}
	if _, err := svc.AcceptInvitationByToken(invitee, first.Token); err != nil {
		t.Fatalf("accept: %v", err)
	}
	member, _ := st.GetMembership(org.ID, invitee.ID)
	if err := svc.RemoveMember(owner, org.ID, member.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	// The accepted invitation must not resurface after removal.
	visible, err := svc.ListPendingInvitations(invitee)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("no invitations should be visible after removal, got %d", len(visible))
	}

	// Second cycle: a fresh invitation must be the only visible one.
	second, err := svc.Invite(owner, org.ID, "cycle@x.com", "viewer")
	if err != nil {
		t.Fatalf("re-invite: %v", err)
	}
	// The new invitation postdates the old acceptance.
	st.invitations[second.ID].CreatedAt = time.Now().Add(time.Minute)

	visible, err = svc.ListPendingInvitations(invitee)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != second.ID {
		t.Fatalf("only the new invitation should be visible, got %d", len(visible))
	}
}

func TestListPendingInvitationsExcludesCurrentMemberships(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	memberID := uuid.New()
	org, _ := seedOrg(st, "Acme", ownerID, "owner@acme.com")
	seedMember(st, org.ID, memberID, "member@x.com", permission.RoleUser)

	stray := &models.Invitation{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		InviterID:      ownerID,
		InviteeEmail:   "member@x.com",
		Role:           permission.RoleViewer,
		Status:         models.InvitationStatusPending,
		Token:          "stray",
		ExpiresAt:      svc.now().Add(time.Hour),
		CreatedAt:      svc.now(),
	}
	st.invitations[stray.ID] = stray

	visible, err := svc.ListPendingInvitations(Actor{ID: memberID, Email: "member@x.com"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("invitations for current members must be hidden, got %d", len(visible))
	}
}
