package share

import (
	"context"
	"sort"
	"sync"

	"pantry/internal/grocery/models"
	id "pantry/pkg/domain"
	"pantry/pkg/platform/sentinel"
)

// InMemoryShareStore keeps sharing grants in process memory for tests and
// single-node development.
type InMemoryShareStore struct {
	mu     sync.RWMutex
	shares map[id.ShareID]*models.Share
}

func New() *InMemoryShareStore {
	return &InMemoryShareStore{shares: make(map[id.ShareID]*models.Share)}
}

func (s *InMemoryShareStore) CreateIfAbsent(_ context.Context, share *models.Share) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.shares {
		if existing.ListID == share.ListID && existing.UserID == share.UserID {
			return sentinel.ErrAlreadyUsed
		}
	}
	copied := *share
	s.shares[share.ID] = &copied
	return nil
}

func (s *InMemoryShareStore) Exists(_ context.Context, listID id.ListID, userID id.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, share := range s.shares {
		if share.ListID == listID && share.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryShareStore) Delete(_ context.Context, listID id.ListID, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for shareID, share := range s.shares {
		if share.ListID == listID && share.UserID == userID {
			delete(s.shares, shareID)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryShareStore) FindByList(_ context.Context, listID id.ListID) ([]*models.Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var shares []*models.Share
	for _, share := range s.shares {
		if share.ListID == listID {
			copied := *share
			shares = append(shares, &copied)
		}
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].CreatedAt.Equal(shares[j].CreatedAt) {
			return shares[i].ID.String() < shares[j].ID.String()
		}
		return shares[i].CreatedAt.Before(shares[j].CreatedAt)
	})
	return shares, nil
}

func (s *InMemoryShareStore) DeleteByList(_ context.Context, listID id.ListID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for shareID, share := range s.shares {
		if share.ListID == listID {
			delete(s.shares, shareID)
		}
	}
	return nil
}

// ListIDsForUser reports the lists shared with a user; the in-memory list
// store binds this as its shared index for FindVisibleTo.
func (s *InMemoryShareStore) ListIDsForUser(_ context.Context, userID id.UserID) ([]id.ListID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var listIDs []id.ListID
	for _, share := range s.shares {
		if share.UserID == userID {
			listIDs = append(listIDs, share.ListID)
		}
	}
	return listIDs, nil
}
