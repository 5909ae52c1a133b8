package share

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pantry/internal/grocery/models"
	id "pantry/pkg/domain"
	"pantry/pkg/platform/sentinel"
	txcontext "pantry/pkg/platform/tx"
)

// PostgresStore persists sharing grants in PostgreSQL. The UNIQUE(list_id,
// user_id) constraint is the authority on grant uniqueness; violations
// surface as sentinel.ErrAlreadyUsed.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed share store.
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

const uniqueViolation = "23505"

func (s *PostgresStore) CreateIfAbsent(ctx context.Context, share *models.Share) error {
	query := `
		INSERT INTO list_shares (id, list_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(share.ID),
		uuid.UUID(share.ListID),
		uuid.UUID(share.UserID),
		share.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert share: %w", err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, listID id.ListID, userID id.UserID) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM list_shares WHERE list_id = $1 AND user_id = $2)`,
		uuid.UUID(listID), uuid.UUID(userID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check share: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Delete(ctx context.Context, listID id.ListID, userID id.UserID) error {
	result, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM list_shares WHERE list_id = $1 AND user_id = $2`,
		uuid.UUID(listID), uuid.UUID(userID),
	)
	if err != nil {
		return fmt.Errorf("delete share: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete share rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByList(ctx context.Context, listID id.ListID) ([]*models.Share, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, list_id, user_id, created_at FROM list_shares
		 WHERE list_id = $1 ORDER BY created_at, id`,
		uuid.UUID(listID),
	)
	if err != nil {
		return nil, fmt.Errorf("select shares: %w", err)
	}
	defer rows.Close()

	var shares []*models.Share
	for rows.Next() {
		var (
			share   models.Share
			rawID   uuid.UUID
			rawList uuid.UUID
			rawUser uuid.UUID
		)
		if err := rows.Scan(&rawID, &rawList, &rawUser, &share.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		share.ID = id.ShareID(rawID)
		share.ListID = id.ListID(rawList)
		share.UserID = id.UserID(rawUser)
		shares = append(shares, &share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shares: %w", err)
	}
	return shares, nil
}

func (s *PostgresStore) DeleteByList(ctx context.Context, listID id.ListID) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM list_shares WHERE list_id = $1`,
		uuid.UUID(listID),
	)
	if err != nil {
		return fmt.Errorf("delete shares by list: %w", err)
	}
	return nil
}
