package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"tickethub/internal/platform/database"
	"tickethub/internal/session"
	id "tickethub/pkg/domain"
	"tickethub/pkg/platform/sentinel"
)

const (
	insertSessionSQL = `INSERT INTO sessions (id, data, updated_at, expires_at) VALUES ($1, $2, $3, $4)`
	selectSessionSQL = `SELECT data FROM sessions WHERE id = $1 AND (expires_at IS NULL OR expires_at > $2)`
	lockSessionSQL   = `SELECT data FROM sessions WHERE id = $1 AND (expires_at IS NULL OR expires_at > $2) FOR UPDATE`
	upsertSessionSQL = `INSERT INTO sessions (id, data, updated_at, expires_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at`
	deleteSessionSQL = `DELETE FROM sessions WHERE id = $1`
)

// PostgresDB is the subset of pgxpool.Pool the store uses.
type PostgresDB interface {
	database.Execer
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore keeps sessions as JSONB rows. Update locks the row with
// SELECT ... FOR UPDATE so concurrent writers serialize.
type PostgresStore struct {
	db  PostgresDB
	ttl time.Duration
	now func() time.Time
}

var _ session.Store = (*PostgresStore)(nil)

// NewPostgres constructs a Postgres-backed store. Zero ttl keeps rows until
// they are deleted.
func NewPostgres(db PostgresDB, ttl time.Duration) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl, now: time.Now}
}

func (s *PostgresStore) expiry(now time.Time) *time.Time {
	if s.ttl <= 0 {
		return nil
	}
	t := now.Add(s.ttl)
	return &t
}

func (s *PostgresStore) Create(ctx context.Context, data *session.Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	now := s.now().UTC()
	if _, err := s.db.Exec(ctx, insertSessionSQL, data.ID.String(), payload, now, s.expiry(now)); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, sessionID id.SessionID) (*session.Data, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, selectSessionSQL, sessionID.String(), s.now().UTC()).Scan(&raw)
	if database.IsNoRows(err) {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decodeData(raw)
}

func (s *PostgresStore) Update(ctx context.Context, sessionID id.SessionID, fn func(*session.Data) error) (*session.Data, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin session update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := s.now().UTC()
	working := &session.Data{ID: sessionID}
	var raw []byte
	err = tx.QueryRow(ctx, lockSessionSQL, sessionID.String(), now).Scan(&raw)
	switch {
	case database.IsNoRows(err):
	case err != nil:
		return nil, fmt.Errorf("get session for update: %w", err)
	default:
		if working, err = decodeData(raw); err != nil {
			return nil, err
		}
	}

	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = sessionID

	payload, err := json.Marshal(working)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if _, err := tx.Exec(ctx, upsertSessionSQL, sessionID.String(), payload, now, s.expiry(now)); err != nil {
		return nil, fmt.Errorf("write session: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit session update: %w", err)
	}
	return working, nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	tag, err := s.db.Exec(ctx, deleteSessionSQL, sessionID.String())
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

// DeleteExpired removes rows past their expiry and returns how many went.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= $1`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

