package handler

import (
	"strings"

	dErrors "pantry/pkg/domain-errors"
)

// RegisterRequest is the HTTP request body for POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the registration fields.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "username is required")
	}
	if len(r.Username) > 150 {
		return dErrors.New(dErrors.CodeInvalidInput, "username must be 150 characters or less")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}
	return nil
}

// LoginRequest is the HTTP request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "username and password are required")
	}
	return nil
}

// SessionLoginRequest is the HTTP request body for POST /auth/session-login.
type SessionLoginRequest struct {
	IDToken string `json:"id_token"`
}

func (r *SessionLoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.IDToken = strings.TrimSpace(r.IDToken)
	if r.IDToken == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "id_token is required")
	}
	return nil
}
