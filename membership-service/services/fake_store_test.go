package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"orghub-backend/shared/database/models"
	"orghub-backend/shared/database/models/notification"
	"orghub-backend/shared/utils/apperrors"
	"orghub-backend/shared/utils/permission"
)

// fakeStore is an in-memory Store. It mimics the two uniqueness constraints
// the real schema enforces: one membership per (organization, user) and at
// most one owner per organization.
type fakeStore struct {
	orgs        map[uuid.UUID]*models.Organization
	memberships map[uuid.UUID]*models.Membership
	invitations map[uuid.UUID]*models.Invitation
	auditLogs   []*notification.AuditLog

	updateMembershipRoleFunc   func(membershipID uuid.UUID, role permission.Role) error
	updateInvitationStatusFunc func(id uuid.UUID, status models.InvitationStatus) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orgs:        make(map[uuid.UUID]*models.Organization),
		memberships: make(map[uuid.UUID]*models.Membership),
		invitations: make(map[uuid.UUID]*models.Invitation),
	}
}

func (f *fakeStore) CreateOrganizationWithOwner(org *models.Organization, owner *models.Membership) error {
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	org.CreatedAt = time.Now()
	f.orgs[org.ID] = org
	owner.OrganizationID = org.ID
	return f.CreateMembership(owner)
}

func (f *fakeStore) GetOrganization(id uuid.UUID) (*models.Organization, error) {
	org, ok := f.orgs[id]
	if !ok {
		return nil, apperrors.NotFound("organization not found")
	}
	copied := *org
	return &copied, nil
}

func (f *fakeStore) UpdateOrganization(org *models.Organization) error {
	if _, ok := f.orgs[org.ID]; !ok {
		return apperrors.NotFound("organization not found")
	}
	copied := *org
	f.orgs[org.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteOrganization(id uuid.UUID) error {
	if _, ok := f.orgs[id]; !ok {
		return apperrors.NotFound("organization not found")
	}
	delete(f.orgs, id)
	for mid, m := range f.memberships {
		if m.OrganizationID == id {
			delete(f.memberships, mid)
		}
	}
	for iid, inv := range f.invitations {
		if inv.OrganizationID == id {
			delete(f.invitations, iid)
		}
	}
	return nil
}

func (f *fakeStore) ListOrganizationsForUser(userID uuid.UUID) ([]models.Organization, error) {
	var orgs []models.Organization
	for _, m := range f.memberships {
		if m.UserID == userID {
			if org, ok := f.orgs[m.OrganizationID]; ok {
				orgs = append(orgs, *org)
			}
		}
	}
	return orgs, nil
}

func (f *fakeStore) GetMembership(orgID, userID uuid.UUID) (*models.Membership, error) {
	for _, m := range f.memberships {
		if m.OrganizationID == orgID && m.UserID == userID {
			copied := *m
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("membership not found")
}

func (f *fakeStore) GetMembershipByID(orgID, membershipID uuid.UUID) (*models.Membership, error) {
	m, ok := f.memberships[membershipID]
	if !ok || m.OrganizationID != orgID {
		return nil, apperrors.NotFound("member not found")
	}
	copied := *m
	return &copied, nil
}

func (f *fakeStore) ListMemberships(orgID uuid.UUID) ([]models.Membership, error) {
	var memberships []models.Membership
	for _, m := range f.memberships {
		if m.OrganizationID == orgID {
			memberships = append(memberships, *m)
		}
	}
	return memberships, nil
}

func (f *fakeStore) CountMemberships(orgID uuid.UUID) (int64, error) {
	var count int64
	for _, m := range f.memberships {
		if m.OrganizationID == orgID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) HasMemberWithEmail(orgID uuid.UUID, email string) (bool, error) {
	for _, m := range f.memberships {
		if m.OrganizationID == orgID && strings.EqualFold(m.UserEmail, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateMembership(m *models.Membership) error {
	for _, existing := range f.memberships {
		if existing.OrganizationID == m.OrganizationID && existing.UserID == m.UserID {
			return apperrors.Conflict("user is already a member of this organization")
		}
		if m.Role == permission.RoleOwner && existing.OrganizationID == m.OrganizationID && existing.Role == permission.RoleOwner {
			return apperrors.Conflict("organization already has an owner")
		}
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	copied := *m
	f.memberships[m.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateMembershipRole(membershipID uuid.UUID, role permission.Role) error {
	if f.updateMembershipRoleFunc != nil {
		return f.updateMembershipRoleFunc(membershipID, role)
	}
	return f.applyUpdateMembershipRole(membershipID, role)
}

// applyUpdateMembershipRole is the default role update, kept callable so
// failure hooks can delegate selectively
func (f *fakeStore) applyUpdateMembershipRole(membershipID uuid.UUID, role permission.Role) error {
	m, ok := f.memberships[membershipID]
	if !ok {
		return apperrors.NotFound("member not found")
	}
	if role == permission.RoleOwner {
		for _, existing := range f.memberships {
			if existing.OrganizationID == m.OrganizationID && existing.Role == permission.RoleOwner && existing.ID != membershipID {
				return apperrors.Conflict("organization already has an owner")
			}
		}
	}
	m.Role = role
	return nil
}

func (f *fakeStore) DeleteMembership(membershipID uuid.UUID) error {
	if _, ok := f.memberships[membershipID]; !ok {
		return apperrors.NotFound("member not found")
	}
	delete(f.memberships, membershipID)
	return nil
}

func (f *fakeStore) GetInvitation(id uuid.UUID) (*models.Invitation, error) {
	inv, ok := f.invitations[id]
	if !ok {
		return nil, apperrors.NotFound("invitation not found")
	}
	copied := *inv
	return &copied, nil
}

func (f *fakeStore) GetInvitationByToken(token string) (*models.Invitation, error) {
	for _, inv := range f.invitations {
		if inv.Token == token {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("invitation not found")
}

func (f *fakeStore) ListPendingInvitationsForOrg(orgID uuid.UUID) ([]models.Invitation, error) {
	var invitations []models.Invitation
	for _, inv := range f.invitations {
		if inv.OrganizationID == orgID && inv.Status == models.InvitationStatusPending {
			invitations = append(invitations, *inv)
		}
	}
	return invitations, nil
}

func (f *fakeStore) ListPendingInvitationsForEmail(email string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	for _, inv := range f.invitations {
		if strings.EqualFold(inv.InviteeEmail, email) && inv.Status == models.InvitationStatusPending {
			invitations = append(invitations, *inv)
		}
	}
	return invitations, nil
}

func (f *fakeStore) HasPendingInvitation(orgID uuid.UUID, email string) (bool, error) {
	for _, inv := range f.invitations {
		if inv.OrganizationID == orgID && strings.EqualFold(inv.InviteeEmail, email) && inv.Status == models.InvitationStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) HasAcceptedInvitationSince(orgID uuid.UUID, email string, since time.Time) (bool, error) {
	for _, inv := range f.invitations {
		if inv.OrganizationID == orgID && strings.EqualFold(inv.InviteeEmail, email) &&
			inv.Status == models.InvitationStatusAccepted && !inv.UpdatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateInvitation(inv *models.Invitation) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	inv.UpdatedAt = inv.CreatedAt
	copied := *inv
	f.invitations[inv.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateInvitationStatus(id uuid.UUID, status models.InvitationStatus) error {
	if f.updateInvitationStatusFunc != nil {
		return f.updateInvitationStatusFunc(id, status)
	}
	return f.applyUpdateInvitationStatus(id, status)
}

func (f *fakeStore) applyUpdateInvitationStatus(id uuid.UUID, status models.InvitationStatus) error {
	inv, ok := f.invitations[id]
	if !ok {
		return apperrors.NotFound("invitation not found")
	}
	inv.Status = status
	inv.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) SweepPendingInvitations(orgID uuid.UUID, email string) error {
	for _, inv := range f.invitations {
		if inv.OrganizationID == orgID && strings.EqualFold(inv.InviteeEmail, email) && inv.Status == models.InvitationStatusPending {
			inv.Status = models.InvitationStatusAccepted
			inv.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (f *fakeStore) InsertAuditLog(entry *notification.AuditLog) error {
	f.auditLogs = append(f.auditLogs, entry)
	return nil
}

// ownerCount counts owner memberships of an organization; used to assert the
// single-owner invariant in tests
func (f *fakeStore) ownerCount(orgID uuid.UUID) int {
	count := 0
	for _, m := range f.memberships {
		if m.OrganizationID == orgID && m.Role == permission.RoleOwner {
			count++
		}
	}
	return count
}

// fakeNotifier records dispatched events in order
type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) InvitationCreated(org *models.Organization, inv *models.Invitation) {
	f.events = append(f.events, "invitation_created:"+inv.InviteeEmail)
}

func (f *fakeNotifier) MemberJoined(org *models.Organization, member *models.Membership) {
	f.events = append(f.events, "member_joined:"+member.UserEmail)
}

func (f *fakeNotifier) MemberRemoved(org *models.Organization, member *models.Membership) {
	f.events = append(f.events, "member_removed:"+member.UserEmail)
}

func (f *fakeNotifier) RoleChanged(org *models.Organization, member *models.Membership, oldRole permission.Role) {
	f.events = append(f.events, "role_changed:"+member.UserEmail)
}

func (f *fakeNotifier) OwnershipTransferred(org *models.Organization, formerOwner, newOwner *models.Membership) {
	f.events = append(f.events, "ownership_transferred:"+newOwner.UserEmail)
}

func (f *fakeNotifier) OrganizationDeleted(org *models.Organization, members []models.Membership) {
	f.events = append(f.events, "organization_deleted:"+org.Name)
}

func (f *fakeNotifier) has(event string) bool {
	for _, e := range f.events {
		if e == event {
			return true
		}
	}
	return false
}

// newTestService wires a Service with deterministic clock and tokens
func newTestService(st *fakeStore) (*Service, *fakeNotifier) {
	notifier := &fakeNotifier{}
	svc := NewService(st, notifier)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	tokenSeq := 0
	svc.newToken = func() (string, error) {
		tokenSeq++
		return fmt.Sprintf("test-token-%d", tokenSeq), nil
	}
	return svc, notifier
}

// seedOrg creates an organization with an owner membership directly in the
// fake store and returns the org and the owner membership
func seedOrg(st *fakeStore, name string, ownerID uuid.UUID, ownerEmail string) (*models.Organization, *models.Membership) {
	org := &models.Organization{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	st.orgs[org.ID] = org
	owner := &models.Membership{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		UserID:         ownerID,
		UserEmail:      ownerEmail,
		Role:           permission.RoleOwner,
		JoinedAt:       time.Now(),
	}
	st.memberships[owner.ID] = owner
	return org, owner
}

// seedMember adds a non-owner membership directly in the fake store
func seedMember(st *fakeStore, orgID uuid.UUID, userID uuid.UUID, email string, role permission.Role) *models.Membership {
	m := &models.Membership{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UserID:         userID,
		UserEmail:      email,
		Role:           role,
		JoinedAt:       time.Now(),
	}
	st.memberships[m.ID] = m
	return m
}
