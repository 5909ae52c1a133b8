package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pantry/internal/identity/models"
	id "pantry/pkg/domain"
	"pantry/pkg/platform/sentinel"
	txcontext "pantry/pkg/platform/tx"
)

// PostgresStore persists users in PostgreSQL. Uniqueness of username and email
// is enforced by the schema; violations surface as sentinel.ErrAlreadyUsed.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
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

func (s *PostgresStore) CreateIfAvailable(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(user.ID),
		user.Username,
		nullString(user.Email),
		nullString(user.PasswordHash),
		user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`,
		uuid.UUID(userID),
	)
	return scanUser(row)
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE lower(username) = lower($1)`,
		username,
	)
	return scanUser(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE lower(email) = lower($1)`,
		email,
	)
	return scanUser(row)
}

func (s *PostgresStore) FindByIDs(ctx context.Context, userIDs []id.UserID) ([]*models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	raw := make([]uuid.UUID, len(userIDs))
	for i, userID := range userIDs {
		raw[i] = uuid.UUID(userID)
	}
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ANY($1)`,
		pq.Array(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("select users by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[id.UserID]*models.User, len(userIDs))
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		byID[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	// Preserve the caller's ordering; skip IDs that no longer resolve.
	found := make([]*models.User, 0, len(userIDs))
	for _, userID := range userIDs {
		if user, ok := byID[userID]; ok {
			found = append(found, user)
		}
	}
	return found, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row *sql.Row) (*models.User, error) {
	user, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return user, err
}

func scanUserRow(row rowScanner) (*models.User, error) {
	var (
		user         models.User
		rawID        uuid.UUID
		email        sql.NullString
		passwordHash sql.NullString
	)
	if err := row.Scan(&rawID, &user.Username, &email, &passwordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.ID = id.UserID(rawID)
	user.Email = email.String
	user.PasswordHash = passwordHash.String
	return &user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
