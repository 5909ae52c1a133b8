//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"pantry/internal/grocery/models"
	"pantry/internal/grocery/store"
	itemstore "pantry/internal/grocery/store/item"
	liststore "pantry/internal/grocery/store/list"
	sharestore "pantry/internal/grocery/store/share"
	identitymodels "pantry/internal/identity/models"
	userstore "pantry/internal/identity/store/user"
	id "pantry/pkg/domain"
	"pantry/pkg/platform/sentinel"
	"pantry/pkg/testutil/containers"
)

// PostgresGrocerySuite exercises the list, item and share stores against a
// real database, including the transactional locking the service layer
// depends on.
type PostgresGrocerySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	users    *userstore.PostgresStore
	lists    *liststore.PostgresStore
	items    *itemstore.PostgresStore
	shares   *sharestore.PostgresStore
	tx       *store.SQLTx

	alice *identitymodels.User
	bob   *identitymodels.User
}

func TestPostgresGrocerySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresGrocerySuite))
}

func (s *PostgresGrocerySuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.postgres.ApplySchema(s.T(), "../../../migrations/000001_init.up.sql")
	s.users = userstore.NewPostgres(s.postgres.DB)
	s.lists = liststore.NewPostgres(s.postgres.DB)
	s.items = itemstore.NewPostgres(s.postgres.DB)
	s.shares = sharestore.NewPostgres(s.postgres.DB)
	s.tx = store.NewSQLTx(s.postgres.DB)
}

func (s *PostgresGrocerySuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "list_shares", "grocery_items", "grocery_lists", "users")
	s.Require().NoError(err)

	s.alice = s.seedUser("alice")
	s.bob = s.seedUser("bob")
}

func (s *PostgresGrocerySuite) seedUser(name string) *identitymodels.User {
	user := &identitymodels.User{
		ID:           id.UserID(uuid.New()),
		Username:     name + "-" + uuid.NewString()[:8],
		PasswordHash: "$2a$10$fakehashfakehashfakehashfakehashfakehashfakehashfakeh",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.users.CreateIfAvailable(context.Background(), user))
	return user
}

func (s *PostgresGrocerySuite) seedList(owner id.UserID, name string, createdAt time.Time) *models.List {
	list := &models.List{
		ID:        id.ListID(uuid.New()),
		Name:      name,
		OwnerID:   owner,
		CreatedAt: createdAt,
	}
	s.Require().NoError(s.lists.Create(context.Background(), list))
	return list
}

func (s *PostgresGrocerySuite) seedItem(list *models.List, actor *identitymodels.User, name, quantity string) *models.Item {
	item := &models.Item{
		ID:             id.ItemID(uuid.New()),
		ListID:         list.ID,
		Name:           name,
		Quantity:       quantity,
		AddedByUserID:  actor.ID,
		AddedByDisplay: actor.Username,
		AddedAt:        time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.items.Create(context.Background(), item))
	return item
}

func (s *PostgresGrocerySuite) seedShare(list *models.List, grantee id.UserID) {
	share := &models.Share{
		ID:        id.ShareID(uuid.New()),
		ListID:    list.ID,
		UserID:    grantee,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.shares.CreateIfAbsent(context.Background(), share))
}

// ============================================================
// Lists
// ============================================================

// TestFindVisibleTo verifies owned and shared lists merge without duplicates,
// ordered by creation time.
func (s *PostgresGrocerySuite) TestFindVisibleTo() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond).Add(-time.Hour)

	weekly := s.seedList(s.alice.ID, "Weekly", base)
	party := s.seedList(s.alice.ID, "Party", base.Add(time.Minute))
	camping := s.seedList(s.bob.ID, "Camping", base.Add(2*time.Minute))

	s.seedShare(party, s.bob.ID)

	aliceLists, err := s.lists.FindVisibleTo(ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Require().Len(aliceLists, 2)
	s.Equal(weekly.ID, aliceLists[0].ID)
	s.Equal(party.ID, aliceLists[1].ID)

	bobLists, err := s.lists.FindVisibleTo(ctx, s.bob.ID)
	s.Require().NoError(err)
	s.Require().Len(bobLists, 2)
	s.Equal(party.ID, bobLists[0].ID)
	s.Equal(camping.ID, bobLists[1].ID)
}

func (s *PostgresGrocerySuite) TestDeleteCascadesToItemsAndShares() {
	ctx := context.Background()
	list := s.seedList(s.alice.ID, "Weekly", time.Now().UTC())
	item := s.seedItem(list, s.alice, "milk", "1 gal")
	s.seedShare(list, s.bob.ID)

	s.Require().NoError(s.lists.Delete(ctx, list.ID))

	_, err := s.items.FindByID(ctx, item.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	exists, err := s.shares.Exists(ctx, list.ID, s.bob.ID)
	s.Require().NoError(err)
	s.False(exists)

	s.ErrorIs(s.lists.Delete(ctx, list.ID), sentinel.ErrNotFound)
}

// ============================================================
// Items
// ============================================================

// TestToggleCompletedIsAtomic runs concurrent toggles and verifies the flag
// lands where an even number of flips must leave it.
func (s *PostgresGrocerySuite) TestToggleCompletedIsAtomic() {
	ctx := context.Background()
	list := s.seedList(s.alice.ID, "Weekly", time.Now().UTC())
	item := s.seedItem(list, s.alice, "milk", "1 gal")

	const toggles = 20
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.items.ToggleCompleted(ctx, item.ID)
			s.NoError(err)
		}()
	}
	wg.Wait()

	found, err := s.items.FindByID(ctx, item.ID)
	s.Require().NoError(err)
	s.False(found.Completed, "even number of toggles must restore the original state")
}

func (s *PostgresGrocerySuite) TestItemRoundTrip() {
	ctx := context.Background()
	list := s.seedList(s.alice.ID, "Weekly", time.Now().UTC())
	milk := s.seedItem(list, s.alice, "milk", "1 gal")
	eggs := s.seedItem(list, s.bob, "eggs", "12")

	s.Require().NoError(s.items.UpdateFields(ctx, milk.ID, "oat milk", "2 qt"))

	found, err := s.items.FindByList(ctx, list.ID)
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal("oat milk", found[0].Name)
	s.Equal("2 qt", found[0].Quantity)
	s.Equal(s.alice.Username, found[0].AddedByDisplay)
	s.Equal("eggs", found[1].Name)
	s.Equal(s.bob.Username, found[1].AddedByDisplay)

	s.Require().NoError(s.items.Delete(ctx, eggs.ID))
	s.ErrorIs(s.items.Delete(ctx, eggs.ID), sentinel.ErrNotFound)
}

// ============================================================
// Shares
// ============================================================

func (s *PostgresGrocerySuite) TestShareUniqueness() {
	ctx := context.Background()
	list := s.seedList(s.alice.ID, "Weekly", time.Now().UTC())

	s.seedShare(list, s.bob.ID)

	dupe := &models.Share{
		ID:        id.ShareID(uuid.New()),
		ListID:    list.ID,
		UserID:    s.bob.ID,
		CreatedAt: time.Now().UTC(),
	}
	s.ErrorIs(s.shares.CreateIfAbsent(ctx, dupe), sentinel.ErrAlreadyUsed)

	shares, err := s.shares.FindByList(ctx, list.ID)
	s.Require().NoError(err)
	s.Len(shares, 1)

	s.Require().NoError(s.shares.Delete(ctx, list.ID, s.bob.ID))
	s.ErrorIs(s.shares.Delete(ctx, list.ID, s.bob.ID), sentinel.ErrNotFound)
}

// ============================================================
// Transactions
// ============================================================

// TestRunInTxRollsBackOnError verifies nothing persists when the callback
// fails.
func (s *PostgresGrocerySuite) TestRunInTxRollsBackOnError() {
	ctx := context.Background()
	list := &models.List{
		ID:        id.ListID(uuid.New()),
		Name:      "Doomed",
		OwnerID:   s.alice.ID,
		CreatedAt: time.Now().UTC(),
	}

	boom := errors.New("abort")
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.lists.Create(ctx, list); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.lists.FindByID(ctx, list.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestFindByIDForUpdateBlocksConcurrentTx verifies the row lock serializes
// check-then-act sequences across transactions.
func (s *PostgresGrocerySuite) TestFindByIDForUpdateBlocksConcurrentTx() {
	ctx := context.Background()
	list := s.seedList(s.alice.ID, "Weekly", time.Now().UTC())
	s.seedShare(list, s.bob.ID)

	const hold = 300 * time.Millisecond
	locked := make(chan struct{})
	var waited time.Duration

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-locked
		start := time.Now()
		err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
			if _, err := s.lists.FindByIDForUpdate(ctx, list.ID); err != nil {
				return err
			}
			waited = time.Since(start)
			return s.shares.Delete(ctx, list.ID, s.bob.ID)
		})
		s.NoError(err)
	}()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.lists.FindByIDForUpdate(ctx, list.ID); err != nil {
			return err
		}
		close(locked)
		time.Sleep(hold)
		return nil
	})
	s.Require().NoError(err)
	wg.Wait()

	s.GreaterOrEqual(waited, hold/2, "second transaction should block on the row lock")

	exists, err := s.shares.Exists(ctx, list.ID, s.bob.ID)
	s.Require().NoError(err)
	s.False(exists)
}
