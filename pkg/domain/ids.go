// Package domain defines the typed identifiers shared across features.
//
// Each entity gets its own UUID-backed type so a ListID can never be passed
// where a UserID is expected. Parse functions enforce the invariant that IDs
// are valid, non-empty, non-nil UUIDs at trust boundaries (HTTP paths, tokens).
package domain

import (
	"github.com/google/uuid"

	dErrors "pantry/pkg/domain-errors"
)

type (
	// UserID identifies a registered user.
	UserID uuid.UUID
	// ListID identifies a grocery list.
	ListID uuid.UUID
	// ItemID identifies an item on a grocery list.
	ItemID uuid.UUID
	// ShareID identifies a sharing grant on a list.
	ShareID uuid.UUID
)

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewListID returns a fresh random ListID.
func NewListID() ListID { return ListID(uuid.New()) }

// NewItemID returns a fresh random ItemID.
func NewItemID() ItemID { return ItemID(uuid.New()) }

// NewShareID returns a fresh random ShareID.
func NewShareID() ShareID { return ShareID(uuid.New()) }

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id ListID) String() string { return uuid.UUID(id).String() }
func (id ItemID) String() string { return uuid.UUID(id).String() }
func (id ShareID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ListID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ItemID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseUserID parses and validates a user ID from its string form.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseListID parses and validates a list ID from its string form.
func ParseListID(s string) (ListID, error) {
	u, err := parseUUID(s, "list id")
	return ListID(u), err
}

// ParseItemID parses and validates an item ID from its string form.
func ParseItemID(s string) (ItemID, error) {
	u, err := parseUUID(s, "item id")
	return ItemID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must not be the nil UUID")
	}
	return u, nil
}
