package permission

import "github.com/google/uuid"

// Decision is the result of a permission check
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

const (
	ReasonInsufficientPermission   = "insufficient permission"
	ReasonAdminsCannotModify       = "admins cannot modify owners or other admins"
	ReasonAdminsCannotAssign       = "admins cannot assign owner or admin roles"
	ReasonAdminsCannotInvite       = "admins can only invite users and viewers"
	ReasonAdminsCannotRemove       = "admins can only remove users and viewers"
	ReasonOwnerMustTransferFirst   = "owners must transfer ownership before leaving"
	ReasonCannotRemoveOwner        = "cannot remove the owner; transfer first"
	ReasonUseOwnershipTransfer     = "ownership must be changed through ownership transfer"
	ReasonCannotInviteOwner        = "the owner role cannot be granted by invitation"
	ReasonCannotTransferToYourself = "ownership cannot be transferred to yourself"
	ReasonOnlyOwnerCanTransfer     = "only the owner can transfer ownership"
)

// CanInvite reports whether a member with the given role may send invitations
func CanInvite(actorRole Role) Decision {
	if actorRole == RoleOwner || actorRole == RoleAdmin {
		return allow()
	}
	return deny(ReasonInsufficientPermission)
}

// CanInviteRole reports whether the actor may invite someone at the given role.
// Admins may only invite users and viewers; owners may invite anything below
// owner. The owner role is never grantable by invitation.
func CanInviteRole(actorRole, invitedRole Role) Decision {
	if invitedRole == RoleOwner {
		return deny(ReasonCannotInviteOwner)
	}
	switch actorRole {
	case RoleOwner:
		return allow()
	case RoleAdmin:
		if invitedRole == RoleUser || invitedRole == RoleViewer {
			return allow()
		}
		return deny(ReasonAdminsCannotInvite)
	default:
		return deny(ReasonInsufficientPermission)
	}
}

// CanChangeRole reports whether the actor may change the target member's role
// to newRole. Promotion to owner is always denied here; ownership moves only
// through the transfer protocol. Demoting the current owner is denied for the
// same reason, otherwise the organization would be left ownerless.
func CanChangeRole(actorRole, targetRole, newRole Role) Decision {
	if newRole == RoleOwner {
		return deny(ReasonUseOwnershipTransfer)
	}
	switch actorRole {
	case RoleOwner:
		if targetRole == RoleOwner {
			return deny(ReasonUseOwnershipTransfer)
		}
		return allow()
	case RoleAdmin:
		if targetRole == RoleOwner || targetRole == RoleAdmin {
			return deny(ReasonAdminsCannotModify)
		}
		if newRole == RoleAdmin {
			return deny(ReasonAdminsCannotAssign)
		}
		return allow()
	default:
		return deny(ReasonInsufficientPermission)
	}
}

// CanRemoveMember reports whether the actor may remove the target member.
// Self-removal (leaving) is allowed for everyone except the owner, who must
// transfer ownership first.
func CanRemoveMember(actorID uuid.UUID, actorRole Role, targetID uuid.UUID, targetRole Role) Decision {
	if actorID == targetID {
		if actorRole == RoleOwner {
			return deny(ReasonOwnerMustTransferFirst)
		}
		return allow()
	}
	switch actorRole {
	case RoleOwner:
		if targetRole == RoleOwner {
			return deny(ReasonCannotRemoveOwner)
		}
		return allow()
	case RoleAdmin:
		if targetRole == RoleUser || targetRole == RoleViewer {
			return allow()
		}
		return deny(ReasonAdminsCannotRemove)
	default:
		return deny(ReasonInsufficientPermission)
	}
}

// CanUpdateOrganization reports whether the actor may update organization details
func CanUpdateOrganization(actorRole Role) Decision {
	if actorRole == RoleOwner || actorRole == RoleAdmin {
		return allow()
	}
	return deny(ReasonInsufficientPermission)
}

// CanDeleteOrganization reports whether the actor may delete the organization
func CanDeleteOrganization(actorRole Role) Decision {
	if actorRole == RoleOwner {
		return allow()
	}
	return deny(ReasonInsufficientPermission)
}

// CanTransferOwnership reports whether the actor may transfer ownership to the
// target user. The caller is responsible for verifying that the target is an
// existing member of the organization.
func CanTransferOwnership(actorRole Role, actorID, targetID uuid.UUID) Decision {
	if actorRole != RoleOwner {
		return deny(ReasonOnlyOwnerCanTransfer)
	}
	if actorID == targetID {
		return deny(ReasonCannotTransferToYourself)
	}
	return allow()
}

// CanCancelInvitation reports whether the actor may cancel a pending
// invitation. The original inviter may always cancel their own invitation;
// otherwise owner or admin role is required.
func CanCancelInvitation(actorID uuid.UUID, actorRole Role, inviterID uuid.UUID) Decision {
	if actorID == inviterID {
		return allow()
	}
	if actorRole == RoleOwner || actorRole == RoleAdmin {
		return allow()
	}
	return deny(ReasonInsufficientPermission)
}
