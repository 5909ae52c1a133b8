// Package store defines the persistence contract for user records.
package store

import (
	"context"

	"pantry/internal/identity/models"
	id "pantry/pkg/domain"
)

// UserStore persists user records.
//
// Implementations return sentinel.ErrNotFound for missing users and
// sentinel.ErrAlreadyUsed when a username or email uniqueness constraint is
// violated; the atomicity of CreateIfAvailable is what makes concurrent
// registrations of the same username resolve to exactly one success.
type UserStore interface {
	// CreateIfAvailable inserts the user unless the username (or email, when
	// set) is already taken.
	CreateIfAvailable(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByIDs returns the users for the given IDs, skipping any that no
	// longer exist. Used to hydrate list membership.
	FindByIDs(ctx context.Context, userIDs []id.UserID) ([]*models.User, error)
}
