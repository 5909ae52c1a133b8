package activity

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "pantry/pkg/domain"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherAssignsDefaults(t *testing.T) {
	p := NewPublisher(4, discard())
	p.Publish(context.Background(), Event{
		ListID: id.NewListID(),
		Action: ActionItemAdded,
	})

	event := <-p.Events()
	assert.NotEqual(t, event.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.False(t, event.CreatedAt.IsZero())
}

func TestPublisherDropsWhenFull(t *testing.T) {
	p := NewPublisher(1, discard())
	ctx := context.Background()

	p.Publish(ctx, Event{ListID: id.NewListID(), Action: ActionItemAdded})
	// Buffer is full; this must return instead of blocking.
	done := make(chan struct{})
	go func() {
		p.Publish(ctx, Event{ListID: id.NewListID(), Action: ActionItemAdded})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
}

func TestWorkerPersistsEvents(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(4, discard())
	worker := NewWorker(store, p.Events(), discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	listID := id.NewListID()
	p.Publish(ctx, Event{ListID: listID, Action: ActionListCreated, Subject: "weekly shop"})

	require.Eventually(t, func() bool {
		events, err := store.FindByList(context.Background(), listID, 10)
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestInMemoryStoreOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	listID := id.NewListID()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, action := range []Action{ActionListCreated, ActionItemAdded, ActionItemCompleted} {
		require.NoError(t, store.Append(ctx, Event{
			ListID:    listID,
			Action:    action,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	t.Run("newest first", func(t *testing.T) {
		events, err := store.FindByList(ctx, listID, 0)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, ActionItemCompleted, events[0].Action)
		assert.Equal(t, ActionListCreated, events[2].Action)
	})

	t.Run("limit caps the page", func(t *testing.T) {
		events, err := store.FindByList(ctx, listID, 2)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("delete by list clears the trail", func(t *testing.T) {
		require.NoError(t, store.DeleteByList(ctx, listID))
		events, err := store.FindByList(ctx, listID, 0)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
