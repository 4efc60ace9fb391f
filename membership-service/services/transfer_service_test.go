package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"orghub-backend/shared/utils/apperrors"
	"orghub-backend/shared/utils/permission"
)

func TestTransferOwnership(t *testing.T) {
	st := newFakeStore()
	svc, notifier := newTestService(st)
	ownerID := uuid.New()
	adminID := uuid.New()
	org, ownerMembership := seedOrg(st, "Acme", ownerID, "owner@acme.com")
	adminMembership := seedMember(st, org.ID, adminID, "admin@acme.com", permission.RoleAdmin)

	newOwner, err := svc.TransferOwnership(Actor{ID: ownerID, Email: "owner@acme.com"}, org.ID, adminMembership.ID)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if newOwner.Role != permission.RoleOwner {
		t.Fatalf("expected owner role, got %s", newOwner.Role)
	}

	former, _ := st.GetMembershipByID(org.ID, ownerMembership.ID)
	if former.Role != permission.RoleAdmin {
		t.Fatalf("former owner must be admin, got %s", former.Role)
	}
	if got := st.ownerCount(org.ID); got != 1 {
		t.Fatalf("expected exactly 1 owner, got %d", got)
	}
	if !notifier.has("ownership_transferred:admin@acme.com") {
		t.Fatal("expected transfer notification")
	}
}

func TestTransferOwnershipRoundTrip(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	aID := uuid.New()
	bID := uuid.New()
	org, aMembership := seedOrg(st, "Acme", aID, "a@acme.com")
	bMembership := seedMember(st, org.ID, bID, "b@acme.com", permission.RoleAdmin)

	if _, err := svc.TransferOwnership(Actor{ID: aID, Email: "a@acme.com"}, org.ID, bMembership.ID); err != nil {
		t.Fatalf("first transfer: %v", err)
	}
	if got := st.ownerCount(org.ID); got != 1 {
		t.Fatalf("owner count after first transfer: %d", got)
	}
	if _, err := svc.TransferOwnership(Actor{ID: bID, Email: "b@acme.com"}, org.ID, aMembership.ID); err != nil {
		t.Fatalf("second transfer: %v", err)
	}
	if got := st.ownerCount(org.ID); got != 1 {
		t.Fatalf("owner count after round trip: %d", got)
	}

	// Back to the original assignment.
	a, _ := st.GetMembershipByID(org.ID, aMembership.ID)
	b, _ := st.GetMembershipByID(org.ID, bMembership.ID)
	if a.Role != permission.RoleOwner {
		t.Fatalf("expected a to be owner again, got %s", a.Role)
	}
	if b.Role != permission.RoleAdmin {
		t.Fatalf("expected b to be admin again, got %s", b.Role)
	}
}

func TestTransferOwnershipDenied(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	adminID := uuid.New()
	org, ownerMembership := seedOrg(st, "Acme", ownerID, "owner@acme.com")
	adminMembership := seedMember(st, org.ID, adminID, "admin@acme.com", permission.RoleAdmin)

	// Only the owner can transfer.
	_, err := svc.TransferOwnership(Actor{ID: adminID, Email: "admin@acme.com"}, org.ID, adminMembership.ID)
	if !apperrors.IsKind(err, apperrors.KindNotAuthorized) {
		t.Fatalf("expected not_authorized, got %v", err)
	}

	// Transferring to yourself is refused.
	_, err = svc.TransferOwnership(Actor{ID: ownerID, Email: "owner@acme.com"}, org.ID, ownerMembership.ID)
	if !apperrors.IsKind(err, apperrors.KindNotAuthorized) {
		t.Fatalf("expected not_authorized for self-transfer, got %v", err)
	}

	// Nothing changed.
	if got := st.ownerCount(org.ID); got != 1 {
		t.Fatalf("owner count must stay 1, got %d", got)
	}
	m, _ := st.GetMembershipByID(org.ID, ownerMembership.ID)
	if m.Role != permission.RoleOwner {
		t.Fatalf("owner role must be untouched, got %s", m.Role)
	}
}

func TestTransferOwnershipPromoteFailureRollsBack(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	adminID := uuid.New()
	org, ownerMembership := seedOrg(st, "Acme", ownerID, "owner@acme.com")
	adminMembership := seedMember(st, org.ID, adminID, "admin@acme.com", permission.RoleAdmin)

	// Fail only the promotion; the demote and the rollback go through.
	st.updateMembershipRoleFunc = func(membershipID uuid.UUID, role permission.Role) error {
		if membershipID == adminMembership.ID {
			return errors.New("connection reset")
		}
		return st.applyUpdateMembershipRole(membershipID, role)
	}

	_, err := svc.TransferOwnership(Actor{ID: ownerID, Email: "owner@acme.com"}, org.ID, adminMembership.ID)
	if err == nil {
		t.Fatal("expected transfer to fail")
	}
	if apperrors.IsKind(err, apperrors.KindCritical) {
		t.Fatalf("rollback succeeded, error must not be critical: %v", err)
	}

	// The rollback restored the original owner.
	m, _ := st.GetMembershipByID(org.ID, ownerMembership.ID)
	if m.Role != permission.RoleOwner {
		t.Fatalf("expected owner role restored, got %s", m.Role)
	}
	if got := st.ownerCount(org.ID); got != 1 {
		t.Fatalf("expected 1 owner after rollback, got %d", got)
	}
}

func TestTransferOwnershipRollbackFailureIsCritical(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ownerID := uuid.New()
	adminID := uuid.New()
	org, ownerMembership := seedOrg(st, "Acme", ownerID, "owner@acme.com")
	adminMembership := seedMember(st, org.ID, adminID, "admin@acme.com", permission.RoleAdmin)

	// The demotion succeeds, then every later update fails: both the
	// promotion and the compensating rollback.
	calls := 0
	st.updateMembershipRoleFunc = func(membershipID uuid.UUID, role permission.Role) error {
		calls++
		if calls == 1 {
			return st.applyUpdateMembershipRole(membershipID, role)
		}
		return errors.New("connection reset")
	}

	_, err := svc.TransferOwnership(Actor{ID: ownerID, Email: "owner@acme.com"}, org.ID, adminMembership.ID)
	if !apperrors.IsKind(err, apperrors.KindCritical) {
		t.Fatalf("expected critical error, got %v", err)
	}

	// The organization really is ownerless; the error is honest about it.
	if got := st.ownerCount(org.ID); got != 0 {
		t.Fatalf("expected 0 owners in the failure state, got %d", got)
	}
	m, _ := st.GetMembershipByID(org.ID, ownerMembership.ID)
	if m.Role != permission.RoleAdmin {
		t.Fatalf("expected demoted former owner, got %s", m.Role)
	}
}
