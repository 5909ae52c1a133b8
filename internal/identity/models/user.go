package models

import (
	"time"

	id "pantry/pkg/domain"
	dErrors "pantry/pkg/domain-errors"
)

// User is a registered account.
//
// Invariants:
//   - Username is non-empty and unique across all users
//   - Email, when present, is unique across all users
//   - PasswordHash holds a bcrypt hash, never a raw credential; it is empty
//     for accounts provisioned through federated login
type User struct {
	ID           id.UserID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // Never serialize - contains bcrypt hash
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser constructs a credential-backed user.
func NewUser(userID id.UserID, username, passwordHash string, now time.Time) (*User, error) {
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "username cannot be empty")
	}
	if len(username) > 150 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "username must be 150 characters or less")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	return &User{
		ID:           userID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// NewFederatedUser constructs a user provisioned from an externally verified
// email identity. Such accounts carry no local credential.
func NewFederatedUser(userID id.UserID, username, email string, now time.Time) (*User, error) {
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "username cannot be empty")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email cannot be empty")
	}
	return &User{
		ID:        userID,
		Username:  username,
		Email:     email,
		CreatedAt: now,
	}, nil
}
