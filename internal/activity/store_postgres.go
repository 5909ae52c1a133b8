package activity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "pantry/pkg/domain"
	txcontext "pantry/pkg/platform/tx"
)

// PostgresStore persists activity events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed activity store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO list_activity (id, list_id, actor_id, actor_name, action, subject, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var actorID any
	if !event.ActorID.IsNil() {
		actorID = uuid.UUID(event.ActorID)
	}
	_, err := s.q(ctx).ExecContext(ctx, query,
		event.ID,
		uuid.UUID(event.ListID),
		actorID,
		event.ActorName,
		string(event.Action),
		event.Subject,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity event: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByList(ctx context.Context, listID id.ListID, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, list_id, actor_id, actor_name, action, subject, created_at
		 FROM list_activity WHERE list_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2`,
		uuid.UUID(listID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select activity: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event   Event
			rawList uuid.UUID
			actorID uuid.NullUUID
			action  string
			subject sql.NullString
		)
		if err := rows.Scan(&event.ID, &rawList, &actorID, &event.ActorName, &action, &subject, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity event: %w", err)
		}
		event.ListID = id.ListID(rawList)
		if actorID.Valid {
			event.ActorID = id.UserID(actorID.UUID)
		}
		event.Action = Action(action)
		event.Subject = subject.String
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return events, nil
}

func (s *PostgresStore) DeleteByList(ctx context.Context, listID id.ListID) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM list_activity WHERE list_id = $1`,
		uuid.UUID(listID),
	)
	if err != nil {
		return fmt.Errorf("delete activity by list: %w", err)
	}
	return nil
}
