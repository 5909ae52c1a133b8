package models

import (
	"strings"
	"time"

	id "pantry/pkg/domain"
	dErrors "pantry/pkg/domain-errors"
)

// List is a grocery list.
//
// Invariants:
//   - Name is non-empty
//   - OwnerID references an existing user and is immutable after creation;
//     a list has exactly one owner
type List struct {
	ID        id.ListID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   id.UserID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewList constructs a list owned by the given user.
func NewList(listID id.ListID, ownerID id.UserID, name string, now time.Time) (*List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "list name cannot be empty")
	}
	if len(name) > 100 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "list name must be 100 characters or less")
	}
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "list owner is required")
	}
	return &List{
		ID:        listID,
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
	}, nil
}
