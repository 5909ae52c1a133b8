package item

import (
	"context"
	"sort"
	"sync"

	"pantry/internal/grocery/models"
	id "pantry/pkg/domain"
	"pantry/pkg/platform/sentinel"
)

// InMemoryItemStore keeps items in process memory for tests and single-node
// development.
type InMemoryItemStore struct {
	mu    sync.RWMutex
	items map[id.ItemID]*models.Item
}

func New() *InMemoryItemStore {
	return &InMemoryItemStore{items: make(map[id.ItemID]*models.Item)}
}

func (s *InMemoryItemStore) Create(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *InMemoryItemStore) FindByID(_ context.Context, itemID id.ItemID) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if item, ok := s.items[itemID]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryItemStore) ToggleCompleted(_ context.Context, itemID id.ItemID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	item.Completed = !item.Completed
	return item.Completed, nil
}

func (s *InMemoryItemStore) UpdateFields(_ context.Context, itemID id.ItemID, name, quantity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return sentinel.ErrNotFound
	}
	item.Name = name
	item.Quantity = quantity
	return nil
}

func (s *InMemoryItemStore) Delete(_ context.Context, itemID id.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[itemID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.items, itemID)
	return nil
}

func (s *InMemoryItemStore) FindByList(_ context.Context, listID id.ListID) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []*models.Item
	for _, item := range s.items {
		if item.ListID == listID {
			copied := *item
			items = append(items, &copied)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].ID.String() < items[j].ID.String()
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})
	return items, nil
}

func (s *InMemoryItemStore) DeleteByList(_ context.Context, listID id.ListID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for itemID, item := range s.items {
		if item.ListID == listID {
			delete(s.items, itemID)
		}
	}
	return nil
}
