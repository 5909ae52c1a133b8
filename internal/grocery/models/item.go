package models

import (
	"strings"
	"time"

	id "pantry/pkg/domain"
	dErrors "pantry/pkg/domain-errors"
)

// Item is an entry on a grocery list.
//
// Invariants:
//   - Name and Quantity are non-empty (quantity is free-form text: "1 gal")
//   - ListID references an existing list; items are deleted with their list
//   - AddedBy records attribution: the user who added the item plus a display
//     name snapshot that survives the user's later deletion
type Item struct {
	ID             id.ItemID `json:"id"`
	ListID         id.ListID `json:"list_id"`
	Name           string    `json:"name"`
	Quantity       string    `json:"quantity"`
	Completed      bool      `json:"completed"`
	AddedByUserID  id.UserID `json:"added_by_user_id,omitempty"`
	AddedByDisplay string    `json:"added_by"`
	AddedAt        time.Time `json:"added_at"`
}

// NewItem constructs an item with attribution to the acting user.
func NewItem(itemID id.ItemID, listID id.ListID, actorID id.UserID, actorName, name, quantity string, now time.Time) (*Item, error) {
	name = strings.TrimSpace(name)
	quantity = strings.TrimSpace(quantity)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "item name cannot be empty")
	}
	if quantity == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "item quantity cannot be empty")
	}
	if listID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "item list is required")
	}
	return &Item{
		ID:             itemID,
		ListID:         listID,
		Name:           name,
		Quantity:       quantity,
		AddedByUserID:  actorID,
		AddedByDisplay: actorName,
		AddedAt:        now,
	}, nil
}

// ValidateFields checks the mutable item fields for an update.
func ValidateFields(name, quantity string) (string, string, error) {
	name = strings.TrimSpace(name)
	quantity = strings.TrimSpace(quantity)
	if name == "" {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "item name cannot be empty")
	}
	if quantity == "" {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "item quantity cannot be empty")
	}
	return name, quantity, nil
}
