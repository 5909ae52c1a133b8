// Package handler exposes the grocery list endpoints: list registry, item
// ledger, sharing directory and the activity trail. Every route requires an
// authenticated user; the acting user comes from the request context.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pantry/internal/activity"
	"pantry/internal/grocery/models"
	identitymodels "pantry/internal/identity/models"
	id "pantry/pkg/domain"
	dErrors "pantry/pkg/domain-errors"
	"pantry/pkg/platform/httputil"
	"pantry/pkg/requestcontext"
)

// Service defines the interface for grocery list operations.
type Service interface {
	CreateList(ctx context.Context, ownerID id.UserID, name string) (*models.List, error)
	ListDetail(ctx context.Context, requesterID id.UserID, listID id.ListID) (*models.List, []*models.Item, error)
	ListsVisibleTo(ctx context.Context, userID id.UserID) ([]*models.List, error)
	DeleteList(ctx context.Context, listID id.ListID, requesterID id.UserID) error

	AddItem(ctx context.Context, listID id.ListID, actorID id.UserID, name, quantity string) (*models.Item, error)
	ToggleCompleted(ctx context.Context, itemID id.ItemID, actorID id.UserID) (bool, error)
	UpdateItem(ctx context.Context, itemID id.ItemID, actorID id.UserID, name, quantity string) error
	DeleteItem(ctx context.Context, itemID id.ItemID, actorID id.UserID) (id.ListID, error)

	ShareWith(ctx context.Context, listID id.ListID, requesterID id.UserID, granteeUsername string) (models.ShareOutcome, error)
	Unshare(ctx context.Context, listID id.ListID, requesterID id.UserID, granteeID id.UserID) (models.ShareOutcome, error)
	MembersOf(ctx context.Context, requesterID id.UserID, listID id.ListID) ([]*identitymodels.User, error)

	ListActivity(ctx context.Context, requesterID id.UserID, listID id.ListID, limit int) ([]activity.Event, error)
}

// Handler wires the grocery endpoints to the grocery service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a grocery handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the grocery endpoints on the router. All routes assume the
// auth middleware already ran.
func (h *Handler) Register(r chi.Router) {
	r.Get("/lists", h.HandleListLists)
	r.Post("/lists", h.HandleCreateList)
	r.Get("/lists/{listID}", h.HandleGetList)
	r.Delete("/lists/{listID}", h.HandleDeleteList)

	r.Post("/lists/{listID}/items", h.HandleAddItem)
	r.Post("/items/{itemID}/toggle", h.HandleToggleItem)
	r.Put("/items/{itemID}", h.HandleUpdateItem)
	r.Delete("/items/{itemID}", h.HandleDeleteItem)

	r.Get("/lists/{listID}/members", h.HandleListMembers)
	r.Post("/lists/{listID}/shares", h.HandleShare)
	r.Delete("/lists/{listID}/shares/{userID}", h.HandleUnshare)

	r.Get("/lists/{listID}/activity", h.HandleListActivity)
}

// HandleListLists handles GET /lists requests: every list the user owns or
// was granted, owned and shared merged without duplicates.
func (h *Handler) HandleListLists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.actor(w, ctx)
	if !ok {
		return
	}

	lists, err := h.service.ListsVisibleTo(ctx, userID)
	if err != nil {
		h.writeServiceError(w, ctx, "list lists failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromLists(lists))
}

// HandleCreateList handles POST /lists requests.
func (h *Handler) HandleCreateList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.actor(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateListRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	list, err := h.service.CreateList(ctx, userID, req.Name)
	if err != nil {
		h.writeServiceError(w, ctx, "create list failed", err)
		return
	}

	h.logger.InfoContext(ctx, "list created",
		"request_id", requestcontext.RequestID(ctx),
		"list_id", list.ID,
		"owner_id", userID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromList(list))
}

// HandleGetList handles GET /lists/{listID} requests, returning the list with
// its items in the order they were added.
func (h *Handler) HandleGetList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.actor(w, ctx)
	if !ok {
		return
	}
	listID, ok := h.listParam(w, r)
	if !ok {
		return
	}

	list, items, err := h.service.ListDetail(ctx, userID, listID)
	if err != nil {
		h.writeServiceError(w, ctx, "get list failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ListDetailResponse{
		ListResponse: FromList(list),
		Items:        FromItems(items),
	})
}

// HandleDeleteList handles DELETE /lists/{listID} requests. Owner only; the
// list's items and shares go with it.
func (h *Handler) HandleDeleteList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.actor(w, ctx)
	if !ok {
		return
	}
	listID, ok := h.listParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteList(ctx, listID, userID); err != nil {
		h.writeServiceError(w, ctx, "delete list failed", err)
		return
	}

	h.logger.InfoContext(ctx, "list deleted",
		"request_id", requestcontext.RequestID(ctx),
		"list_id", listID,
		"user_id", userID,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddItem handles POST /lists/{listID}/items requests.
func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.actor(w, ctx)
	if !ok {
		return
	}
	listID, ok := h.listParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ItemRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	item, err := h.service.AddItem(ctx, listID, userID, req.Name, req.Quantity)
	if err != nil {
		h.writeServiceError(w, ctx, "add item failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromItem(item))
}

// HandleToggleItem handles POST /items/{itemID}/toggle requests, flipping the
// completed flag and reporting the new state.
func (h *Handler) HandleToggleItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.actor(w, ctx)
	if !ok {
		return
	}
	itemID, ok := h.itemParam(w, r)
	if !ok {
		return
	}

	completed, err := h.service.ToggleCompleted(ctx, itemID, userID)
	if err != nil {
		h.writeServiceError(w, ctx, "toggle item failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToggleResponse{Completed: completed})
}

// HandleUpdateItem handles PUT /items/{itemID} requests.
func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.actor(w, ctx)
	if !ok {
		return
	}
	itemID, ok := h.itemParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ItemRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	if err := h.service.UpdateItem(ctx, itemID, userID, req.Name, req.Quantity); err != nil {
		h.writeServiceError(w, ctx, "update item failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteItem handles DELETE /items/{itemID} requests.
func (h *Handler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.actor(w, ctx)
	if !ok {
		return
	}
	itemID, ok := h.itemParam(w, r)
	if !ok {
		return
	}

	if _, err := h.service.DeleteItem(ctx, itemID, userID); err != nil {
		h.writeServiceError(w, ctx, "delete item failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMembers handles GET /lists/{listID}/members requests: the owner
// first, then grantees in the order access was granted.
func (h *Handler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.actor(w, ctx)
	if !ok {
		return
	}
	listID, ok := h.listParam(w, r)
	if !ok {
		return
	}

	members, err := h.service.MembersOf(ctx, userID, listID)
	if err != nil {
		h.writeServiceError(w, ctx, "list members failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMembers(members))
}

// HandleShare handles POST /lists/{listID}/shares requests. The grantee is
// named by username; policy refusals are notices, not errors.
func (h *Handler) HandleShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.actor(w, ctx)
	if !ok {
		return
	}
	listID, ok := h.listParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ShareRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	outcome, err := h.service.ShareWith(ctx, listID, userID, req.Username)
	if err != nil {
		h.writeServiceError(w, ctx, "share list failed", err)
		return
	}

	h.logger.InfoContext(ctx, "share requested",
		"request_id", requestcontext.RequestID(ctx),
		"list_id", listID,
		"grantee", req.Username,
		"outcome", outcome,
	)
	httputil.WriteJSON(w, http.StatusOK, FromOutcome(outcome))
}

// HandleUnshare handles DELETE /lists/{listID}/shares/{userID} requests.
func (h *Handler) HandleUnshare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.actor(w, ctx)
	if !ok {
		return
	}
	listID, ok := h.listParam(w, r)
	if !ok {
		return
	}
	granteeID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.service.Unshare(ctx, listID, userID, granteeID)
	if err != nil {
		h.writeServiceError(w, ctx, "unshare list failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOutcome(outcome))
}

// HandleListActivity handles GET /lists/{listID}/activity requests, newest
// first. An optional limit query parameter caps the page size.
func (h *Handler) HandleListActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.actor(w, ctx)
	if !ok {
		return
	}
	listID, ok := h.listParam(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	events, err := h.service.ListActivity(ctx, userID, listID, limit)
	if err != nil {
		h.writeServiceError(w, ctx, "list activity failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromActivity(events))
}

// actor pulls the authenticated user out of the context, rejecting requests
// that somehow bypassed the auth middleware.
func (h *Handler) actor(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) listParam(w http.ResponseWriter, r *http.Request) (id.ListID, bool) {
	listID, err := id.ParseListID(chi.URLParam(r, "listID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ListID{}, false
	}
	return listID, true
}

func (h *Handler) itemParam(w http.ResponseWriter, r *http.Request) (id.ItemID, bool) {
	itemID, err := id.ParseItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ItemID{}, false
	}
	return itemID, true
}

// writeServiceError logs expected-path failures at warn and everything else
// at error, then writes the mapped response.
func (h *Handler) writeServiceError(w http.ResponseWriter, ctx context.Context, msg string, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
