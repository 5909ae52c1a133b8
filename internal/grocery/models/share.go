package models

import (
	"time"

	id "pantry/pkg/domain"
	dErrors "pantry/pkg/domain-errors"
)

// Share grants a user access to a list beyond its owner.
//
// Invariants:
//   - (ListID, UserID) is unique: a user cannot be granted the same list twice
//   - UserID is never the list's owner; owner access is implicit and never
//     represented as a share row
//   - Shares are deleted with their list or their grantee (cascade)
type Share struct {
	ID        id.ShareID `json:"id"`
	ListID    id.ListID  `json:"list_id"`
	UserID    id.UserID  `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewShare constructs a grant of listID to granteeID.
func NewShare(shareID id.ShareID, listID id.ListID, granteeID id.UserID, now time.Time) (*Share, error) {
	if listID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "share list is required")
	}
	if granteeID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "share grantee is required")
	}
	return &Share{
		ID:        shareID,
		ListID:    listID,
		UserID:    granteeID,
		CreatedAt: now,
	}, nil
}

// ShareOutcome reports the result of a sharing operation. Policy refusals
// (already shared, self share, removing the owner, not shared) are no-ops
// reported as notices, not errors; the transport layer surfaces them with a
// success status and a user-visible message.
type ShareOutcome string

const (
	OutcomeShared            ShareOutcome = "shared"
	OutcomeUnshared          ShareOutcome = "unshared"
	OutcomeAlreadyShared     ShareOutcome = "already_shared"
	OutcomeNotShared         ShareOutcome = "not_shared"
	OutcomeSelfShareRejected ShareOutcome = "self_share_rejected"
	OutcomeCannotRemoveOwner ShareOutcome = "cannot_remove_owner"
)

// Notice returns the user-facing message for the outcome.
func (o ShareOutcome) Notice() string {
	switch o {
	case OutcomeShared:
		return "list shared"
	case OutcomeUnshared:
		return "user removed from the list"
	case OutcomeAlreadyShared:
		return "user already has access to this list"
	case OutcomeNotShared:
		return "user does not have access to this list"
	case OutcomeSelfShareRejected:
		return "the owner already has access to this list"
	case OutcomeCannotRemoveOwner:
		return "the owner cannot be removed from the list"
	default:
		return string(o)
	}
}

// Applied reports whether the operation changed anything.
func (o ShareOutcome) Applied() bool {
	return o == OutcomeShared || o == OutcomeUnshared
}
