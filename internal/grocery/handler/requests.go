package handler

import (
	"strings"

	dErrors "pantry/pkg/domain-errors"
)

// CreateListRequest is the HTTP request body for POST /lists.
type CreateListRequest struct {
	Name string `json:"name"`
}

// Validate validates the list fields.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateListRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "list name is required")
	}
	if len(r.Name) > 100 {
		return dErrors.New(dErrors.CodeInvalidInput, "list name must be 100 characters or less")
	}
	return nil
}

// ItemRequest is the HTTP request body for adding or updating an item.
type ItemRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

func (r *ItemRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Quantity = strings.TrimSpace(r.Quantity)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "item name is required")
	}
	if r.Quantity == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "item quantity is required")
	}
	return nil
}

// ShareRequest is the HTTP request body for POST /lists/{listID}/shares.
type ShareRequest struct {
	Username string `json:"username"`
}

func (r *ShareRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "username is required")
	}
	return nil
}
