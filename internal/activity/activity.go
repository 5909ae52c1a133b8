// Package activity records what happened on a list: who added an item, who
// completed it, who was granted access. Services publish events to a buffered
// channel; a background worker persists them so request latency never pays
// for the trail.
package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	id "pantry/pkg/domain"
)

// Action names the kind of event. Stable strings; they are stored and shown.
type Action string

const (
	ActionListCreated   Action = "list.created"
	ActionItemAdded     Action = "item.added"
	ActionItemUpdated   Action = "item.updated"
	ActionItemCompleted Action = "item.completed"
	ActionItemReopened  Action = "item.reopened"
	ActionItemDeleted   Action = "item.deleted"
	ActionListShared    Action = "list.shared"
	ActionListUnshared  Action = "list.unshared"
)

// Event is one entry in a list's activity trail. ActorName is a snapshot so
// the trail stays readable after the actor's account goes away.
type Event struct {
	ID        uuid.UUID `json:"id"`
	ListID    id.ListID `json:"list_id"`
	ActorID   id.UserID `json:"actor_id,omitempty"`
	ActorName string    `json:"actor_name"`
	Action    Action    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists activity events.
type Store interface {
	Append(ctx context.Context, event Event) error
	// FindByList returns up to limit events for a list, newest first.
	FindByList(ctx context.Context, listID id.ListID, limit int) ([]Event, error)
	DeleteByList(ctx context.Context, listID id.ListID) error
}

// Publisher hands events to the worker without blocking the request path.
// A full buffer drops the event rather than stalling the caller.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Events exposes the channel the worker consumes.
func (p *Publisher) Events() <-chan Event { return p.inbox }

// Publish enqueues an event, assigning its ID and timestamp if unset.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "activity buffer full, dropping event",
			"action", string(event.Action),
			"list_id", event.ListID.String(),
		)
	}
}

// Worker consumes activity events from a channel and persists them.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run processes events until the context is cancelled. Persistence failures
// are logged and skipped; one bad event must not stall the trail.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to persist activity event",
					"error", err,
					"action", string(event.Action),
				)
			}
		}
	}
}
