// Package access derives, for any (user, list) pair, the permitted operation
// set. It holds no state of its own; it reads ownership from the list registry
// and grants from the sharing directory.
//
// Two permission tiers exist:
//   - read/contribute: the owner and every grantee; covers viewing the list
//     and adding, editing, completing, and deleting items
//   - manage: the owner only; covers deleting the list and granting or
//     revoking shares
//
// CanContribute equals CanRead on purpose - there is no read-only tier, and
// item mutation access being broader than manage access is the collaboration
// policy, not an oversight.
package access

import (
	"context"

	"pantry/internal/grocery/models"
	"pantry/internal/grocery/store"
	id "pantry/pkg/domain"
)

// Gate evaluates authorization predicates. Callers that mutate must evaluate
// the predicate inside the same transaction as the mutation (lock the list
// row first) so a concurrent revoke cannot land between check and act.
type Gate struct {
	lists  store.ListStore
	shares store.ShareStore
}

func NewGate(lists store.ListStore, shares store.ShareStore) *Gate {
	return &Gate{lists: lists, shares: shares}
}

// CanRead reports whether the user owns the list or holds a share on it.
// Returns sentinel.ErrNotFound (wrapped) when the list does not exist.
func (g *Gate) CanRead(ctx context.Context, userID id.UserID, listID id.ListID) (bool, error) {
	list, err := g.lists.FindByID(ctx, listID)
	if err != nil {
		return false, err
	}
	return g.ReadableBy(ctx, list, userID)
}

// CanContribute reports whether the user may add or mutate items. Identical
// to CanRead in this system.
func (g *Gate) CanContribute(ctx context.Context, userID id.UserID, listID id.ListID) (bool, error) {
	return g.CanRead(ctx, userID, listID)
}

// CanManage reports whether the user may delete the list or manage sharing.
func (g *Gate) CanManage(ctx context.Context, userID id.UserID, listID id.ListID) (bool, error) {
	list, err := g.lists.FindByID(ctx, listID)
	if err != nil {
		return false, err
	}
	return ManageableBy(list, userID), nil
}

// ReadableBy is the in-transaction form of CanRead for callers that already
// hold the (locked) list row.
func (g *Gate) ReadableBy(ctx context.Context, list *models.List, userID id.UserID) (bool, error) {
	if list.OwnerID == userID {
		return true, nil
	}
	return g.shares.Exists(ctx, list.ID, userID)
}

// ManageableBy is the in-transaction form of CanManage.
func ManageableBy(list *models.List, userID id.UserID) bool {
	return list.OwnerID == userID
}
