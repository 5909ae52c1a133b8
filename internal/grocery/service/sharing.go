package service

import (
	"context"
	"errors"
	"strings"

	"pantry/internal/access"
	"pantry/internal/activity"
	"pantry/internal/grocery/models"
	identitymodels "pantry/internal/identity/models"
	id "pantry/pkg/domain"
	dErrors "pantry/pkg/domain-errors"
	"pantry/pkg/platform/sentinel"
	"pantry/pkg/requestcontext"
)

// ShareWith grants granteeUsername access to the list. Owner only. Policy
// refusals (self share, already shared) come back as outcomes, not errors.
func (s *Service) ShareWith(ctx context.Context, listID id.ListID, requesterID id.UserID, granteeUsername string) (models.ShareOutcome, error) {
	granteeUsername = strings.TrimSpace(granteeUsername)

	var outcome models.ShareOutcome
	var granteeName string
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		list, err := s.lists.FindByIDForUpdate(txCtx, listID)
		if err != nil {
			return listErr(err)
		}
		if !access.ManageableBy(list, requesterID) {
			s.metrics.IncAccessDenied()
			return dErrors.New(dErrors.CodeForbidden, "only the owner can share a list")
		}

		// Resolve the grantee only after ownership is established so a
		// non-owner cannot probe for username existence.
		grantee, err := s.users.FindByUsername(txCtx, granteeUsername)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "user not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
		}
		granteeName = grantee.Username
		if grantee.ID == list.OwnerID {
			// Owner access is implicit, never stored as a share.
			outcome = models.OutcomeSelfShareRejected
			return nil
		}

		share, err := models.NewShare(id.NewShareID(), listID, grantee.ID, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.shares.CreateIfAbsent(txCtx, share); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				outcome = models.OutcomeAlreadyShared
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create share")
		}
		outcome = models.OutcomeShared
		return nil
	})
	if err != nil {
		return "", err
	}

	if outcome == models.OutcomeShared {
		s.metrics.IncSharesGranted()
		s.publish(ctx, activity.Event{
			ListID:    listID,
			ActorID:   requesterID,
			ActorName: s.displayName(ctx, requesterID),
			Action:    activity.ActionListShared,
			Subject:   granteeName,
		})
	}
	return outcome, nil
}

// Unshare revokes granteeID's access to the list. Owner only.
func (s *Service) Unshare(ctx context.Context, listID id.ListID, requesterID id.UserID, granteeID id.UserID) (models.ShareOutcome, error) {
	var outcome models.ShareOutcome
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		list, err := s.lists.FindByIDForUpdate(txCtx, listID)
		if err != nil {
			return listErr(err)
		}
		if !access.ManageableBy(list, requesterID) {
			s.metrics.IncAccessDenied()
			return dErrors.New(dErrors.CodeForbidden, "only the owner can manage sharing")
		}
		if granteeID == list.OwnerID {
			outcome = models.OutcomeCannotRemoveOwner
			return nil
		}

		if err := s.shares.Delete(txCtx, listID, granteeID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				outcome = models.OutcomeNotShared
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete share")
		}
		outcome = models.OutcomeUnshared
		return nil
	})
	if err != nil {
		return "", err
	}

	if outcome == models.OutcomeUnshared {
		s.publish(ctx, activity.Event{
			ListID:    listID,
			ActorID:   requesterID,
			ActorName: s.displayName(ctx, requesterID),
			Action:    activity.ActionListUnshared,
			Subject:   s.displayName(ctx, granteeID),
		})
	}
	return outcome, nil
}

// MembersOf returns the list's members: the owner first, then grantees in
// grant-creation order.
func (s *Service) MembersOf(ctx context.Context, requesterID id.UserID, listID id.ListID) ([]*identitymodels.User, error) {
	list, err := s.GetList(ctx, requesterID, listID)
	if err != nil {
		return nil, err
	}

	shares, err := s.shares.FindByList(ctx, listID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list shares")
	}

	memberIDs := make([]id.UserID, 0, len(shares)+1)
	memberIDs = append(memberIDs, list.OwnerID)
	for _, share := range shares {
		memberIDs = append(memberIDs, share.UserID)
	}

	members, err := s.users.FindByIDs(ctx, memberIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load members")
	}
	return members, nil
}
