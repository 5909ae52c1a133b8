// Package store defines the persistence contracts for lists, items and shares.
//
// Each entity has an in-memory implementation for tests and a PostgreSQL
// implementation for production. Implementations return sentinel errors; the
// service layer translates them into domain errors.
package store

import (
	"context"

	"pantry/internal/grocery/models"
	id "pantry/pkg/domain"
)

// ListStore persists grocery lists.
type ListStore interface {
	Create(ctx context.Context, list *models.List) error
	FindByID(ctx context.Context, listID id.ListID) (*models.List, error)
	// FindByIDForUpdate behaves like FindByID but, inside a transaction,
	// locks the list row until commit. Services lock the list before
	// evaluating access so a concurrent revoke cannot slip between the
	// check and the mutation.
	FindByIDForUpdate(ctx context.Context, listID id.ListID) (*models.List, error)
	// FindVisibleTo returns lists the user owns plus lists shared with the
	// user, without duplicates, ordered by creation time.
	FindVisibleTo(ctx context.Context, userID id.UserID) ([]*models.List, error)
	Delete(ctx context.Context, listID id.ListID) error
}

// ItemStore persists grocery items.
type ItemStore interface {
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, itemID id.ItemID) (*models.Item, error)
	// ToggleCompleted flips the completed flag in a single atomic update and
	// returns the new value.
	ToggleCompleted(ctx context.Context, itemID id.ItemID) (bool, error)
	UpdateFields(ctx context.Context, itemID id.ItemID, name, quantity string) error
	Delete(ctx context.Context, itemID id.ItemID) error
	// FindByList returns the list's items ordered by creation time ascending.
	FindByList(ctx context.Context, listID id.ListID) ([]*models.Item, error)
	DeleteByList(ctx context.Context, listID id.ListID) error
}

// ShareStore persists sharing grants.
type ShareStore interface {
	// CreateIfAbsent inserts the share unless the (list, grantee) pair
	// already exists, in which case it returns sentinel.ErrAlreadyUsed.
	CreateIfAbsent(ctx context.Context, share *models.Share) error
	Exists(ctx context.Context, listID id.ListID, userID id.UserID) (bool, error)
	// Delete removes the grant; sentinel.ErrNotFound when no such grant.
	Delete(ctx context.Context, listID id.ListID, userID id.UserID) error
	// FindByList returns the list's grants in grant-creation order.
	FindByList(ctx context.Context, listID id.ListID) ([]*models.Share, error)
	DeleteByList(ctx context.Context, listID id.ListID) error
}
