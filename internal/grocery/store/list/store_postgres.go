package list

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

// PostgresStore persists grocery lists in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed list store.
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

func (s *PostgresStore) Create(ctx context.Context, list *models.List) error {
	query := `
		INSERT INTO grocery_lists (id, name, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(list.ID),
		list.Name,
		uuid.UUID(list.OwnerID),
		list.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert list: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, listID id.ListID) (*models.List, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, name, owner_id, created_at FROM grocery_lists WHERE id = $1`,
		uuid.UUID(listID),
	)
	return scanList(row)
}

// FindByIDForUpdate locks the list row for the rest of the transaction so
// access decisions made against it hold until commit.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, listID id.ListID) (*models.List, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, name, owner_id, created_at FROM grocery_lists WHERE id = $1 FOR UPDATE`,
		uuid.UUID(listID),
	)
	return scanList(row)
}

func (s *PostgresStore) FindVisibleTo(ctx context.Context, userID id.UserID) ([]*models.List, error) {
	// Owned union shared; DISTINCT guards against a row qualifying twice.
	query := `
		SELECT DISTINCT l.id, l.name, l.owner_id, l.created_at
		FROM grocery_lists l
		LEFT JOIN list_shares s ON s.list_id = l.id
		WHERE l.owner_id = $1 OR s.user_id = $1
		ORDER BY l.created_at, l.id
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("select visible lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.List
	for rows.Next() {
		list, err := scanListRow(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lists: %w", err)
	}
	return lists, nil
}

func (s *PostgresStore) Delete(ctx context.Context, listID id.ListID) error {
	result, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM grocery_lists WHERE id = $1`,
		uuid.UUID(listID),
	)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete list rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row *sql.Row) (*models.List, error) {
	return scanListRow(row)
}

func scanListRow(row rowScanner) (*models.List, error) {
	var (
		list    models.List
		rawID   uuid.UUID
		ownerID uuid.UUID
	)
	if err := row.Scan(&rawID, &list.Name, &ownerID, &list.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan list: %w", err)
	}
	list.ID = id.ListID(rawID)
	list.OwnerID = id.UserID(ownerID)
	return &list, nil
}
