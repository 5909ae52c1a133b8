package service

import (
	"context"
	"errors"

	"pantry/internal/activity"
	"pantry/internal/grocery/models"
	id "pantry/pkg/domain"
	dErrors "pantry/pkg/domain-errors"
	"pantry/pkg/platform/sentinel"
	"pantry/pkg/requestcontext"
)

// AddItem appends an item to a list on behalf of actorID. Any collaborator
// (owner or grantee) may add items.
func (s *Service) AddItem(ctx context.Context, listID id.ListID, actorID id.UserID, name, quantity string) (*models.Item, error) {
	actorName := s.displayName(ctx, actorID)

	var item *models.Item
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		list, err := s.lists.FindByIDForUpdate(txCtx, listID)
		if err != nil {
			return listErr(err)
		}
		if err := s.requireContribute(txCtx, list, actorID); err != nil {
			return err
		}

		created, err := models.NewItem(id.NewItemID(), listID, actorID, actorName, name, quantity, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.items.Create(txCtx, created); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create item")
		}
		item = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncItemsAdded()
	s.publish(ctx, activity.Event{
		ListID:    listID,
		ActorID:   actorID,
		ActorName: actorName,
		Action:    activity.ActionItemAdded,
		Subject:   item.Name,
	})
	return item, nil
}

// ToggleCompleted flips an item's completed flag and returns the new state.
func (s *Service) ToggleCompleted(ctx context.Context, itemID id.ItemID, actorID id.UserID) (bool, error) {
	var (
		completed bool
		item      *models.Item
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.items.FindByID(txCtx, itemID)
		if err != nil {
			return itemErr(err)
		}
		list, err := s.lists.FindByIDForUpdate(txCtx, found.ListID)
		if err != nil {
			return listErr(err)
		}
		if err := s.requireContribute(txCtx, list, actorID); err != nil {
			return err
		}

		completed, err = s.items.ToggleCompleted(txCtx, itemID)
		if err != nil {
			return itemErr(err)
		}
		item = found
		return nil
	})
	if err != nil {
		return false, err
	}

	action := activity.ActionItemReopened
	if completed {
		action = activity.ActionItemCompleted
	}
	s.publish(ctx, activity.Event{
		ListID:    item.ListID,
		ActorID:   actorID,
		ActorName: s.displayName(ctx, actorID),
		Action:    action,
		Subject:   item.Name,
	})
	return completed, nil
}

// UpdateItem replaces an item's name and quantity.
func (s *Service) UpdateItem(ctx context.Context, itemID id.ItemID, actorID id.UserID, name, quantity string) error {
	name, quantity, err := models.ValidateFields(name, quantity)
	if err != nil {
		return err
	}

	var item *models.Item
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.items.FindByID(txCtx, itemID)
		if err != nil {
			return itemErr(err)
		}
		list, err := s.lists.FindByIDForUpdate(txCtx, found.ListID)
		if err != nil {
			return listErr(err)
		}
		if err := s.requireContribute(txCtx, list, actorID); err != nil {
			return err
		}

		if err := s.items.UpdateFields(txCtx, itemID, name, quantity); err != nil {
			return itemErr(err)
		}
		item = found
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, activity.Event{
		ListID:    item.ListID,
		ActorID:   actorID,
		ActorName: s.displayName(ctx, actorID),
		Action:    activity.ActionItemUpdated,
		Subject:   name,
	})
	return nil
}

// DeleteItem removes an item, returning the owning list ID for the caller's
// convenience.
func (s *Service) DeleteItem(ctx context.Context, itemID id.ItemID, actorID id.UserID) (id.ListID, error) {
	var item *models.Item
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.items.FindByID(txCtx, itemID)
		if err != nil {
			return itemErr(err)
		}
		list, err := s.lists.FindByIDForUpdate(txCtx, found.ListID)
		if err != nil {
			return listErr(err)
		}
		if err := s.requireContribute(txCtx, list, actorID); err != nil {
			return err
		}

		if err := s.items.Delete(txCtx, itemID); err != nil {
			return itemErr(err)
		}
		item = found
		return nil
	})
	if err != nil {
		return id.ListID{}, err
	}

	s.publish(ctx, activity.Event{
		ListID:    item.ListID,
		ActorID:   actorID,
		ActorName: s.displayName(ctx, actorID),
		Action:    activity.ActionItemDeleted,
		Subject:   item.Name,
	})
	return item.ListID, nil
}

// ListDetail returns a readable list together with its items, evaluating the
// access gate once for both.
func (s *Service) ListDetail(ctx context.Context, requesterID id.UserID, listID id.ListID) (*models.List, []*models.Item, error) {
	list, err := s.GetList(ctx, requesterID, listID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.items.FindByList(ctx, listID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}
	return list, items, nil
}

// ItemsOf returns a list's items ordered by creation time ascending, for a
// requester with read access.
func (s *Service) ItemsOf(ctx context.Context, requesterID id.UserID, listID id.ListID) ([]*models.Item, error) {
	_, items, err := s.ListDetail(ctx, requesterID, listID)
	return items, err
}

func (s *Service) requireContribute(ctx context.Context, list *models.List, actorID id.UserID) error {
	ok, err := s.gate.ReadableBy(ctx, list, actorID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to evaluate access")
	}
	if !ok {
		s.metrics.IncAccessDenied()
		return dErrors.New(dErrors.CodeForbidden, "you do not have access to this list")
	}
	return nil
}

// itemErr translates store facts about an item lookup into domain errors.
func itemErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "item not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load item")
}
