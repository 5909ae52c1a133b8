package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pantry/internal/activity"
	"pantry/internal/grocery/models"
	"pantry/internal/grocery/store"
	itemstore "pantry/internal/grocery/store/item"
	liststore "pantry/internal/grocery/store/list"
	sharestore "pantry/internal/grocery/store/share"
	identitymodels "pantry/internal/identity/models"
	userstore "pantry/internal/identity/store/user"
	id "pantry/pkg/domain"
	dErrors "pantry/pkg/domain-errors"
	"pantry/pkg/requestcontext"
)

// =============================================================================
// Grocery Service Test Suite
// =============================================================================
// The service enforces the collaboration policy: owner and grantees mutate
// items, only the owner deletes a list or manages shares, and access checks
// run in the same transaction as the mutation they guard.

type GroceryServiceSuite struct {
	suite.Suite
	users   *userstore.InMemoryUserStore
	lists   *liststore.InMemoryListStore
	items   *itemstore.InMemoryItemStore
	shares  *sharestore.InMemoryShareStore
	trail   *activity.InMemoryStore
	service *Service

	alice *identitymodels.User
	bob   *identitymodels.User
	carol *identitymodels.User

	base time.Time
}

func TestGroceryServiceSuite(t *testing.T) {
	suite.Run(t, new(GroceryServiceSuite))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *GroceryServiceSuite) SetupTest() {
	s.users = userstore.New()
	s.lists = liststore.New()
	s.items = itemstore.New()
	s.shares = sharestore.New()
	s.trail = activity.NewInMemoryStore()
	s.lists.BindSharedIndex(s.shares.ListIDsForUser)

	s.service = New(s.lists, s.items, s.shares, s.users, store.NewInMemoryTx(),
		WithActivity(activity.NewPublisher(64, discardLogger()), s.trail),
	)

	s.base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.alice = s.mustUser("alice")
	s.bob = s.mustUser("bob")
	s.carol = s.mustUser("carol")
}

// ctxAt freezes the request clock so created_at ordering is deterministic.
func (s *GroceryServiceSuite) ctxAt(offset time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.base.Add(offset))
}

func (s *GroceryServiceSuite) mustUser(username string) *identitymodels.User {
	user, err := identitymodels.NewUser(id.NewUserID(), username, "hash", s.base)
	s.Require().NoError(err)
	s.Require().NoError(s.users.CreateIfAvailable(context.Background(), user))
	return user
}

func (s *GroceryServiceSuite) mustList(owner *identitymodels.User, name string, offset time.Duration) *models.List {
	list, err := s.service.CreateList(s.ctxAt(offset), owner.ID, name)
	s.Require().NoError(err)
	return list
}

func (s *GroceryServiceSuite) mustShare(list *models.List, owner *identitymodels.User, grantee *identitymodels.User) {
	outcome, err := s.service.ShareWith(context.Background(), list.ID, owner.ID, grantee.Username)
	s.Require().NoError(err)
	s.Require().Equal(models.OutcomeShared, outcome)
}

// =============================================================================
// List Registry Tests
// =============================================================================

func (s *GroceryServiceSuite) TestCreateList() {
	ctx := context.Background()

	s.Run("creates a list owned by the caller", func() {
		list, err := s.service.CreateList(ctx, s.alice.ID, "  weekly shop  ")
		s.NoError(err)
		s.Equal("weekly shop", list.Name)
		s.Equal(s.alice.ID, list.OwnerID)
	})

	s.Run("rejects empty names", func() {
		_, err := s.service.CreateList(ctx, s.alice.ID, "   ")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects unknown acting users", func() {
		_, err := s.service.CreateList(ctx, id.NewUserID(), "ghost list")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *GroceryServiceSuite) TestGetList() {
	ctx := context.Background()
	list := s.mustList(s.alice, "weekly shop", 0)

	s.Run("owner can read", func() {
		got, err := s.service.GetList(ctx, s.alice.ID, list.ID)
		s.NoError(err)
		s.Equal(list.ID, got.ID)
	})

	s.Run("stranger is refused without existence leak", func() {
		_, err := s.service.GetList(ctx, s.bob.ID, list.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("grantee can read after sharing", func() {
		s.mustShare(list, s.alice, s.bob)
		got, err := s.service.GetList(ctx, s.bob.ID, list.ID)
		s.NoError(err)
		s.Equal(list.ID, got.ID)
	})

	s.Run("missing list reports not found", func() {
		_, err := s.service.GetList(ctx, s.alice.ID, id.NewListID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *GroceryServiceSuite) TestListsVisibleTo() {
	ctx := context.Background()
	owned := s.mustList(s.alice, "own", 0)
	shared := s.mustList(s.bob, "from bob", time.Minute)
	s.mustList(s.carol, "unrelated", 2*time.Minute)
	s.mustShare(shared, s.bob, s.alice)

	lists, err := s.service.ListsVisibleTo(ctx, s.alice.ID)
	s.NoError(err)
	s.Require().Len(lists, 2)
	s.Equal(owned.ID, lists[0].ID)
	s.Equal(shared.ID, lists[1].ID)
}

func (s *GroceryServiceSuite) TestDeleteList() {
	ctx := context.Background()
	list := s.mustList(s.alice, "weekly shop", 0)
	s.mustShare(list, s.alice, s.bob)
	item, err := s.service.AddItem(ctx, list.ID, s.bob.ID, "milk", "1 gal")
	s.Require().NoError(err)
	s.Require().NoError(s.trail.Append(ctx, activity.Event{
		ListID:    list.ID,
		ActorID:   s.bob.ID,
		ActorName: "bob",
		Action:    activity.ActionItemAdded,
		Subject:   "milk",
		CreatedAt: s.base,
	}))

	s.Run("grantee cannot delete the list", func() {
		err := s.service.DeleteList(ctx, list.ID, s.bob.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("owner deletes list, items and shares together", func() {
		s.NoError(s.service.DeleteList(ctx, list.ID, s.alice.ID))

		_, err := s.service.GetList(ctx, s.alice.ID, list.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = s.items.FindByID(ctx, item.ID)
		s.Error(err)

		exists, err := s.shares.Exists(ctx, list.ID, s.bob.ID)
		s.NoError(err)
		s.False(exists)

		events, err := s.trail.FindByList(ctx, list.ID, 0)
		s.NoError(err)
		s.Empty(events, "the activity trail dies with its list")

		visible, err := s.service.ListsVisibleTo(ctx, s.bob.ID)
		s.NoError(err)
		s.Empty(visible)
	})

	s.Run("deleting a deleted list reports not found", func() {
		err := s.service.DeleteList(ctx, list.ID, s.alice.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Item Ledger Tests
// =============================================================================

func (s *GroceryServiceSuite) TestAddItem() {
	ctx := context.Background()
	list := s.mustList(s.alice, "weekly shop", 0)
	s.mustShare(list, s.alice, s.bob)

	s.Run("owner adds with attribution", func() {
		item, err := s.service.AddItem(ctx, list.ID, s.alice.ID, "milk", "1 gal")
		s.NoError(err)
		s.Equal("milk", item.Name)
		s.Equal(s.alice.ID, item.AddedByUserID)
		s.Equal("alice", item.AddedByDisplay)
	})

	s.Run("grantee adds with own attribution", func() {
		item, err := s.service.AddItem(ctx, list.ID, s.bob.ID, "eggs", "12")
		s.NoError(err)
		s.Equal("bob", item.AddedByDisplay)
	})

	s.Run("stranger is refused", func() {
		_, err := s.service.AddItem(ctx, list.ID, s.carol.ID, "candy", "1 bag")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("rejects empty fields", func() {
		_, err := s.service.AddItem(ctx, list.ID, s.alice.ID, "", "1")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = s.service.AddItem(ctx, list.ID, s.alice.ID, "milk", "  ")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("missing list reports not found", func() {
		_, err := s.service.AddItem(ctx, id.NewListID(), s.alice.ID, "milk", "1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *GroceryServiceSuite) TestToggleCompleted() {
	ctx := context.Background()
	list := s.mustList(s.alice, "weekly shop", 0)
	item, err := s.service.AddItem(ctx, list.ID, s.alice.ID, "milk", "1 gal")
	s.Require().NoError(err)

	s.Run("flips false to true to false", func() {
		completed, err := s.service.ToggleCompleted(ctx, item.ID, s.alice.ID)
		s.NoError(err)
		s.True(completed)

		completed, err = s.service.ToggleCompleted(ctx, item.ID, s.alice.ID)
		s.NoError(err)
		s.False(completed)
	})

	s.Run("stranger is refused", func() {
		_, err := s.service.ToggleCompleted(ctx, item.ID, s.carol.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("missing item reports not found", func() {
		_, err := s.service.ToggleCompleted(ctx, id.NewItemID(), s.alice.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *GroceryServiceSuite) TestUpdateItem() {
	ctx := context.Background()
	list := s.mustList(s.alice, "weekly shop", 0)
	item, err := s.service.AddItem(ctx, list.ID, s.alice.ID, "milk", "1 gal")
	s.Require().NoError(err)

	s.Run("replaces name and quantity", func() {
		s.NoError(s.service.UpdateItem(ctx, item.ID, s.alice.ID, "oat milk", "2 gal"))
		updated, err := s.items.FindByID(ctx, item.ID)
		s.Require().NoError(err)
		s.Equal("oat milk", updated.Name)
		s.Equal("2 gal", updated.Quantity)
	})

	s.Run("rejects empty fields before touching the store", func() {
		err := s.service.UpdateItem(ctx, item.ID, s.alice.ID, " ", "2")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("stranger is refused", func() {
		err := s.service.UpdateItem(ctx, item.ID, s.carol.ID, "candy", "1")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *GroceryServiceSuite) TestDeleteItem() {
	ctx := context.Background()
	list := s.mustList(s.alice, "weekly shop", 0)
	item, err := s.service.AddItem(ctx, list.ID, s.alice.ID, "milk", "1 gal")
	s.Require().NoError(err)

	s.Run("returns the owning list", func() {
		listID, err := s.service.DeleteItem(ctx, item.ID, s.alice.ID)
		s.NoError(err)
		s.Equal(list.ID, listID)

		_, err = s.service.ToggleCompleted(ctx, item.ID, s.alice.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *GroceryServiceSuite) TestItemsOf() {
	list := s.mustList(s.alice, "weekly shop", 0)
	for i, name := range []string{"milk", "eggs", "bread"} {
		_, err := s.service.AddItem(s.ctxAt(time.Duration(i)*time.Minute), list.ID, s.alice.ID, name, "1")
		s.Require().NoError(err)
	}

	s.Run("orders by time added", func() {
		items, err := s.service.ItemsOf(context.Background(), s.alice.ID, list.ID)
		s.NoError(err)
		s.Require().Len(items, 3)
		s.Equal("milk", items[0].Name)
		s.Equal("eggs", items[1].Name)
		s.Equal("bread", items[2].Name)
	})

	s.Run("requires read access", func() {
		_, err := s.service.ItemsOf(context.Background(), s.carol.ID, list.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("detail returns the list with its items", func() {
		found, items, err := s.service.ListDetail(context.Background(), s.alice.ID, list.ID)
		s.NoError(err)
		s.Equal(list.ID, found.ID)
		s.Require().Len(items, 3)
		s.Equal("milk", items[0].Name)
	})

	s.Run("detail requires read access", func() {
		_, _, err := s.service.ListDetail(context.Background(), s.carol.ID, list.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

// =============================================================================
// Sharing Directory Tests
// =============================================================================

func (s *GroceryServiceSuite) TestShareWith() {
	ctx := context.Background()
	list := s.mustList(s.alice, "weekly shop", 0)

	s.Run("owner grants access by username", func() {
		outcome, err := s.service.ShareWith(ctx, list.ID, s.alice.ID, "bob")
		s.NoError(err)
		s.Equal(models.OutcomeShared, outcome)
		s.True(outcome.Applied())

		_, err = s.service.GetList(ctx, s.bob.ID, list.ID)
		s.NoError(err)
	})

	s.Run("sharing twice is an idempotent notice", func() {
		outcome, err := s.service.ShareWith(ctx, list.ID, s.alice.ID, "bob")
		s.NoError(err)
		s.Equal(models.OutcomeAlreadyShared, outcome)
		s.False(outcome.Applied())

		members, err := s.service.MembersOf(ctx, s.alice.ID, list.ID)
		s.NoError(err)
		s.Len(members, 2)
	})

	s.Run("self share is rejected as a notice", func() {
		outcome, err := s.service.ShareWith(ctx, list.ID, s.alice.ID, "alice")
		s.NoError(err)
		s.Equal(models.OutcomeSelfShareRejected, outcome)

		exists, err := s.shares.Exists(ctx, list.ID, s.alice.ID)
		s.NoError(err)
		s.False(exists)
	})

	s.Run("unknown username is an error", func() {
		_, err := s.service.ShareWith(ctx, list.ID, s.alice.ID, "mallory")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("grantee cannot manage sharing", func() {
		_, err := s.service.ShareWith(ctx, list.ID, s.bob.ID, "carol")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("non owner learns nothing about username existence", func() {
		_, knownErr := s.service.ShareWith(ctx, list.ID, s.bob.ID, "carol")
		_, unknownErr := s.service.ShareWith(ctx, list.ID, s.bob.ID, "mallory")
		s.True(dErrors.HasCode(knownErr, dErrors.CodeForbidden))
		s.True(dErrors.HasCode(unknownErr, dErrors.CodeForbidden))
		s.Equal(dErrors.CodeOf(knownErr), dErrors.CodeOf(unknownErr))
	})
}

func (s *GroceryServiceSuite) TestUnshare() {
	ctx := context.Background()
	list := s.mustList(s.alice, "weekly shop", 0)
	s.mustShare(list, s.alice, s.bob)

	s.Run("grantee cannot manage sharing", func() {
		_, err := s.service.Unshare(ctx, list.ID, s.bob.ID, s.bob.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("owner cannot be removed", func() {
		outcome, err := s.service.Unshare(ctx, list.ID, s.alice.ID, s.alice.ID)
		s.NoError(err)
		s.Equal(models.OutcomeCannotRemoveOwner, outcome)
	})

	s.Run("owner revokes access", func() {
		outcome, err := s.service.Unshare(ctx, list.ID, s.alice.ID, s.bob.ID)
		s.NoError(err)
		s.Equal(models.OutcomeUnshared, outcome)

		_, err = s.service.GetList(ctx, s.bob.ID, list.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("revoking a non grantee is a notice", func() {
		outcome, err := s.service.Unshare(ctx, list.ID, s.alice.ID, s.carol.ID)
		s.NoError(err)
		s.Equal(models.OutcomeNotShared, outcome)
	})
}

func (s *GroceryServiceSuite) TestMembersOf() {
	ctx := context.Background()
	list := s.mustList(s.alice, "weekly shop", 0)
	s.mustShare(list, s.alice, s.carol)
	s.mustShare(list, s.alice, s.bob)

	s.Run("owner first, then grantees in grant order", func() {
		members, err := s.service.MembersOf(ctx, s.alice.ID, list.ID)
		s.NoError(err)
		s.Require().Len(members, 3)
		s.Equal("alice", members[0].Username)
		s.Equal("carol", members[1].Username)
		s.Equal("bob", members[2].Username)
	})

	s.Run("grantee may view the roster", func() {
		members, err := s.service.MembersOf(ctx, s.bob.ID, list.ID)
		s.NoError(err)
		s.Len(members, 3)
	})
}

// =============================================================================
// Activity Trail Tests
// =============================================================================

func (s *GroceryServiceSuite) TestListActivity() {
	ctx := context.Background()
	list := s.mustList(s.alice, "weekly shop", 0)

	for i, action := range []activity.Action{activity.ActionItemAdded, activity.ActionItemCompleted} {
		s.Require().NoError(s.trail.Append(ctx, activity.Event{
			ListID:    list.ID,
			ActorID:   s.alice.ID,
			ActorName: "alice",
			Action:    action,
			Subject:   "milk",
			CreatedAt: s.base.Add(time.Duration(i) * time.Minute),
		}))
	}

	s.Run("owner reads newest first", func() {
		events, err := s.service.ListActivity(ctx, s.alice.ID, list.ID, 0)
		s.NoError(err)
		s.Require().Len(events, 2)
		s.Equal(activity.ActionItemCompleted, events[0].Action)
		s.Equal(activity.ActionItemAdded, events[1].Action)
	})

	s.Run("stranger is refused", func() {
		_, err := s.service.ListActivity(ctx, s.carol.ID, list.ID, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

// =============================================================================
// Collaboration Scenario
// =============================================================================

// TestCollaborationLifecycle walks the whole flow: share, collaborate, revoke.
func (s *GroceryServiceSuite) TestCollaborationLifecycle() {
	ctx := context.Background()

	list := s.mustList(s.alice, "household", 0)
	s.mustShare(list, s.alice, s.bob)

	item, err := s.service.AddItem(ctx, list.ID, s.bob.ID, "coffee", "2 bags")
	s.Require().NoError(err)

	completed, err := s.service.ToggleCompleted(ctx, item.ID, s.alice.ID)
	s.Require().NoError(err)
	s.True(completed)

	_, err = s.service.GetList(ctx, s.carol.ID, list.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	outcome, err := s.service.Unshare(ctx, list.ID, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	s.Equal(models.OutcomeUnshared, outcome)

	// Revoked access applies to in-flight style follow-ups too.
	_, err = s.service.ToggleCompleted(ctx, item.ID, s.bob.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	items, err := s.service.ItemsOf(ctx, s.alice.ID, list.ID)
	s.NoError(err)
	s.Require().Len(items, 1)
	s.Equal("bob", items[0].AddedByDisplay)
}
