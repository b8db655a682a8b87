package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orbitwars/backend/core/session"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so store operations
// transparently join a transaction carried in the context.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionStore persists sessions in PostgreSQL. The session payload is stored
// as a jsonb blob, everything the lifecycle queries on sits in its own column.
type SessionStore[Data any] struct {
	pool *pgxpool.Pool
}

// NewSessionStore creates a session store backed by the given pool.
func NewSessionStore[Data any](pool *pgxpool.Pool) *SessionStore[Data] {
	return &SessionStore[Data]{pool: pool}
}

func (s *SessionStore[Data]) conn(ctx context.Context) querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

const sessionColumns = `id, token, user_id, started_at, last_activity,
	ip, user_agent, accept_language, accept_encoding,
	fingerprint, csrf_token, regeneration_count, data`

func (s *SessionStore[Data]) GetByToken(ctx context.Context, token string) (*session.Session[Data], error) {
	row := s.conn(ctx).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token = $1`, token)
	return scanSession[Data](row)
}

func (s *SessionStore[Data]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check session existence: %w", err)
	}
	return exists, nil
}

// Upsert writes the session keyed by its stable ID. A rotation replaces the
// token in place, so the previous identifier stops resolving atomically.
func (s *SessionStore[Data]) Upsert(ctx context.Context, sess *session.Session[Data]) error {
	data, err := json.Marshal(sess.Data)
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}

	_, err = s.conn(ctx).Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			user_id = EXCLUDED.user_id,
			last_activity = EXCLUDED.last_activity,
			ip = EXCLUDED.ip,
			user_agent = EXCLUDED.user_agent,
			accept_language = EXCLUDED.accept_language,
			accept_encoding = EXCLUDED.accept_encoding,
			fingerprint = EXCLUDED.fingerprint,
			csrf_token = EXCLUDED.csrf_token,
			regeneration_count = EXCLUDED.regeneration_count,
			data = EXCLUDED.data`,
		sess.ID, sess.Token, sess.UserID, sess.StartedAt, sess.LastActivity,
		sess.IP, sess.UserAgent, sess.AcceptLanguage, sess.AcceptEncoding,
		sess.Fingerprint, sess.CSRFToken, sess.RegenerationCount, data)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SessionStore[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.conn(ctx).Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (s *SessionStore[Data]) CountInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE last_activity < $1`, cutoff).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count inactive sessions: %w", err)
	}
	return n, nil
}

func (s *SessionStore[Data]) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.conn(ctx).Exec(ctx,
		`DELETE FROM sessions WHERE last_activity < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete inactive sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *SessionStore[Data]) CountTotal(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (s *SessionStore[Data]) CountActiveSince(ctx context.Context, t time.Time) (int64, error) {
	var n int64
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE last_activity >= $1`, t).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active sessions: %w", err)
	}
	return n, nil
}

// UpdateUserLastSeen pushes activity metadata onto the user profile. A missing
// user row is not an error; the session may outlive account deletion briefly.
func (s *SessionStore[Data]) UpdateUserLastSeen(ctx context.Context, userID uuid.UUID, seenAt time.Time, ip, userAgent string) error {
	_, err := s.conn(ctx).Exec(ctx, `
		UPDATE users
		SET last_seen_at = $2, last_ip = $3, last_user_agent = $4
		WHERE id = $1`,
		userID, seenAt, ip, userAgent)
	if err != nil {
		return fmt.Errorf("update user last seen: %w", err)
	}
	return nil
}

func scanSession[Data any](row pgx.Row) (*session.Session[Data], error) {
	var (
		sess session.Session[Data]
		data []byte
	)
	err := row.Scan(
		&sess.ID, &sess.Token, &sess.UserID, &sess.StartedAt, &sess.LastActivity,
		&sess.IP, &sess.UserAgent, &sess.AcceptLanguage, &sess.AcceptEncoding,
		&sess.Fingerprint, &sess.CSRFToken, &sess.RegenerationCount, &data,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &sess.Data); err != nil {
			return nil, fmt.Errorf("unmarshal session data: %w", err)
		}
	}

	return &sess, nil
}
