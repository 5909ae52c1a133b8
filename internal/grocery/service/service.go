// Package service implements the grocery list operations: the list registry,
// the item ledger, and the sharing directory. Every mutating operation
// evaluates the access gate inside the same transaction as the mutation.
package service

import (
	"context"
	"errors"
	"log/slog"

	"pantry/internal/access"
	"pantry/internal/activity"
	grocerymetrics "pantry/internal/grocery/metrics"
	"pantry/internal/grocery/models"
	"pantry/internal/grocery/store"
	identitystore "pantry/internal/identity/store"
	id "pantry/pkg/domain"
	dErrors "pantry/pkg/domain-errors"
	"pantry/pkg/platform/sentinel"
	"pantry/pkg/requestcontext"
)

// Service orchestrates grocery list, item and sharing operations.
type Service struct {
	lists    store.ListStore
	items    store.ItemStore
	shares   store.ShareStore
	users    identitystore.UserStore
	gate     *access.Gate
	tx       store.Tx
	logger   *slog.Logger
	metrics  *grocerymetrics.Metrics
	activity *activity.Publisher
	trail    activity.Store
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the grocery metrics.
func WithMetrics(m *grocerymetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithActivity wires the activity trail: the publisher receives mutation
// events, the store serves reads.
func WithActivity(publisher *activity.Publisher, trail activity.Store) Option {
	return func(s *Service) {
		s.activity = publisher
		s.trail = trail
	}
}

func New(lists store.ListStore, items store.ItemStore, shares store.ShareStore, users identitystore.UserStore, tx store.Tx, opts ...Option) *Service {
	s := &Service{
		lists:  lists,
		items:  items,
		shares: shares,
		users:  users,
		gate:   access.NewGate(lists, shares),
		tx:     tx,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Gate exposes the access predicates for callers that only need a decision.
func (s *Service) Gate() *access.Gate { return s.gate }

// CreateList creates a list owned by ownerID.
func (s *Service) CreateList(ctx context.Context, ownerID id.UserID, name string) (*models.List, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "acting user does not exist")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up owner")
	}

	list, err := models.NewList(id.NewListID(), ownerID, name, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create list")
	}

	s.metrics.IncListsCreated()
	s.publish(ctx, activity.Event{
		ListID:    list.ID,
		ActorID:   ownerID,
		ActorName: owner.Username,
		Action:    activity.ActionListCreated,
		Subject:   list.Name,
	})
	return list, nil
}

// GetList returns a list the requester may read.
func (s *Service) GetList(ctx context.Context, requesterID id.UserID, listID id.ListID) (*models.List, error) {
	list, err := s.lists.FindByID(ctx, listID)
	if err != nil {
		return nil, listErr(err)
	}
	readable, err := s.gate.ReadableBy(ctx, list, requesterID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to evaluate access")
	}
	if !readable {
		s.metrics.IncAccessDenied()
		return nil, dErrors.New(dErrors.CodeForbidden, "you do not have access to this list")
	}
	return list, nil
}

// ListsVisibleTo returns the union of lists the user owns and lists shared
// with the user.
func (s *Service) ListsVisibleTo(ctx context.Context, userID id.UserID) ([]*models.List, error) {
	lists, err := s.lists.FindVisibleTo(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list visible lists")
	}
	return lists, nil
}

// DeleteList deletes a list and, in the same transaction, every item, share
// and activity entry that belongs to it. Owner only. No event is published
// for the deletion itself; the trail dies with its list.
func (s *Service) DeleteList(ctx context.Context, listID id.ListID, requesterID id.UserID) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		list, err := s.lists.FindByIDForUpdate(txCtx, listID)
		if err != nil {
			return listErr(err)
		}
		if !access.ManageableBy(list, requesterID) {
			s.metrics.IncAccessDenied()
			return dErrors.New(dErrors.CodeForbidden, "only the owner can delete a list")
		}

		// Cascade order: items, shares, activity, then the list itself.
		if err := s.items.DeleteByList(txCtx, listID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete list items")
		}
		if err := s.shares.DeleteByList(txCtx, listID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete list shares")
		}
		if s.trail != nil {
			if err := s.trail.DeleteByList(txCtx, listID); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete list activity")
			}
		}
		if err := s.lists.Delete(txCtx, listID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete list")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.IncListsDeleted()
	return nil
}

// ListActivity returns the recent activity trail for a list the requester
// may read.
func (s *Service) ListActivity(ctx context.Context, requesterID id.UserID, listID id.ListID, limit int) ([]activity.Event, error) {
	if s.trail == nil {
		return nil, nil
	}
	if _, err := s.GetList(ctx, requesterID, listID); err != nil {
		return nil, err
	}
	events, err := s.trail.FindByList(ctx, listID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load activity")
	}
	return events, nil
}

func (s *Service) publish(ctx context.Context, event activity.Event) {
	if s.activity != nil {
		s.activity.Publish(ctx, event)
	}
}

// displayName resolves a username snapshot for attribution; an unresolvable
// actor degrades to an empty name rather than failing the operation.
func (s *Service) displayName(ctx context.Context, userID id.UserID) string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return ""
	}
	return user.Username
}

// listErr translates store facts about a list lookup into domain errors.
func listErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "list not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load list")
}
