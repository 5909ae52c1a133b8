package list

import (
	"context"
	"sort"
	"sync"

	"pantry/internal/grocery/models"
	id "pantry/pkg/domain"
	"pantry/pkg/platform/sentinel"
)

// InMemoryListStore keeps lists in process memory for tests and single-node
// development.
type InMemoryListStore struct {
	mu    sync.RWMutex
	lists map[id.ListID]*models.List
	// shared answers "which lists are shared with this user"; the share
	// store keeps it in sync through the SharedIndex hooks.
	shared func(ctx context.Context, userID id.UserID) ([]id.ListID, error)
}

func New() *InMemoryListStore {
	return &InMemoryListStore{lists: make(map[id.ListID]*models.List)}
}

// BindSharedIndex wires the share store lookup used by FindVisibleTo. The
// in-memory stores are separate objects, so the join the SQL store does with
// one query is expressed as a callback here.
func (s *InMemoryListStore) BindSharedIndex(shared func(ctx context.Context, userID id.UserID) ([]id.ListID, error)) {
	s.shared = shared
}

func (s *InMemoryListStore) Create(_ context.Context, list *models.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *list
	s.lists[list.ID] = &copied
	return nil
}

func (s *InMemoryListStore) FindByID(_ context.Context, listID id.ListID) (*models.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if list, ok := s.lists[listID]; ok {
		copied := *list
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

// FindByIDForUpdate is FindByID here; atomicity comes from the transaction
// runner's mutex, not row locks.
func (s *InMemoryListStore) FindByIDForUpdate(ctx context.Context, listID id.ListID) (*models.List, error) {
	return s.FindByID(ctx, listID)
}

func (s *InMemoryListStore) FindVisibleTo(ctx context.Context, userID id.UserID) ([]*models.List, error) {
	s.mu.RLock()
	visible := make(map[id.ListID]*models.List)
	for _, list := range s.lists {
		if list.OwnerID == userID {
			copied := *list
			visible[list.ID] = &copied
		}
	}
	s.mu.RUnlock()

	if s.shared != nil {
		sharedIDs, err := s.shared(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.mu.RLock()
		for _, listID := range sharedIDs {
			if _, ok := visible[listID]; ok {
				continue
			}
			if list, ok := s.lists[listID]; ok {
				copied := *list
				visible[listID] = &copied
			}
		}
		s.mu.RUnlock()
	}

	result := make([]*models.List, 0, len(visible))
	for _, list := range visible {
		result = append(result, list)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID.String() < result[j].ID.String()
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *InMemoryListStore) Delete(_ context.Context, listID id.ListID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[listID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.lists, listID)
	return nil
}
