package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pantry/internal/grocery/models"
	id "pantry/pkg/domain"
	"pantry/pkg/platform/sentinel"
	txcontext "pantry/pkg/platform/tx"
)

// PostgresStore persists grocery items in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed item store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO grocery_items (id, name, quantity, list_id, completed, added_by_user_id, added_by_display, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var addedBy any
	if !item.AddedByUserID.IsNil() {
		addedBy = uuid.UUID(item.AddedByUserID)
	}
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(item.ID),
		item.Name,
		item.Quantity,
		uuid.UUID(item.ListID),
		item.Completed,
		addedBy,
		item.AddedByDisplay,
		item.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, itemID id.ItemID) (*models.Item, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, name, quantity, list_id, completed, added_by_user_id, added_by_display, added_at
		 FROM grocery_items WHERE id = $1`,
		uuid.UUID(itemID),
	)
	item, err := scanItem(row)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ToggleCompleted flips the flag in one statement so two concurrent togglers
// can never lose an update beyond last-write-wins.
func (s *PostgresStore) ToggleCompleted(ctx context.Context, itemID id.ItemID) (bool, error) {
	var completed bool
	err := s.q(ctx).QueryRowContext(ctx,
		`UPDATE grocery_items SET completed = NOT completed WHERE id = $1 RETURNING completed`,
		uuid.UUID(itemID),
	).Scan(&completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, sentinel.ErrNotFound
		}
		return false, fmt.Errorf("toggle item: %w", err)
	}
	return completed, nil
}

func (s *PostgresStore) UpdateFields(ctx context.Context, itemID id.ItemID, name, quantity string) error {
	result, err := s.q(ctx).ExecContext(ctx,
		`UPDATE grocery_items SET name = $2, quantity = $3 WHERE id = $1`,
		uuid.UUID(itemID), name, quantity,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) Delete(ctx context.Context, itemID id.ItemID) error {
	result, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM grocery_items WHERE id = $1`,
		uuid.UUID(itemID),
	)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) FindByList(ctx context.Context, listID id.ListID) ([]*models.Item, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, name, quantity, list_id, completed, added_by_user_id, added_by_display, added_at
		 FROM grocery_items WHERE list_id = $1 ORDER BY added_at, id`,
		uuid.UUID(listID),
	)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) DeleteByList(ctx context.Context, listID id.ListID) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM grocery_items WHERE list_id = $1`,
		uuid.UUID(listID),
	)
	if err != nil {
		return fmt.Errorf("delete items by list: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item    models.Item
		rawID   uuid.UUID
		listID  uuid.UUID
		addedBy uuid.NullUUID
		display sql.NullString
	)
	if err := row.Scan(&rawID, &item.Name, &item.Quantity, &listID, &item.Completed, &addedBy, &display, &item.AddedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	item.ID = id.ItemID(rawID)
	item.ListID = id.ListID(listID)
	if addedBy.Valid {
		item.AddedByUserID = id.UserID(addedBy.UUID)
	}
	item.AddedByDisplay = display.String
	return &item, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
