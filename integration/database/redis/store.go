package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/orbitwars/backend/core/session"
)

const (
	sessionIDPrefix    = "session:id:"
	sessionTokenPrefix = "session:token:"
	userLastSeenPrefix = "user:last_seen:"
)

// sessionRecord is the persisted JSON shape. Kept separate from the session
// entity so the wire format stays stable across entity refactors.
type sessionRecord[Data any] struct {
	ID                uuid.UUID `json:"id"`
	Token             string    `json:"token"`
	UserID            uuid.UUID `json:"user_id"`
	StartedAt         time.Time `json:"started_at"`
	LastActivity      time.Time `json:"last_activity"`
	IP                string    `json:"ip"`
	UserAgent         string    `json:"user_agent"`
	AcceptLanguage    string    `json:"accept_language"`
	AcceptEncoding    string    `json:"accept_encoding"`
	Fingerprint       string    `json:"fingerprint"`
	CSRFToken         string    `json:"csrf_token"`
	RegenerationCount int       `json:"regeneration_count"`
	Data              Data      `json:"data"`
}

// SessionStore persists sessions in Redis. Each session occupies two keys: the
// record under its stable ID and a token index pointing at it. Both expire
// with the session lifetime, so Redis evicts aged-out sessions on its own and
// the maintenance sweep only covers bookkeeping.
type SessionStore[Data any] struct {
	client    *goredis.Client
	ttl       time.Duration
	scanBatch int64
}

// NewSessionStore creates a Redis-backed session store. The ttl should match
// the session manager's max lifetime; scanBatch bounds SCAN page sizes for the
// counting and cleanup operations (0 uses a sane default).
func NewSessionStore[Data any](client *goredis.Client, ttl time.Duration, scanBatch int64) *SessionStore[Data] {
	if scanBatch <= 0 {
		scanBatch = 1000
	}
	return &SessionStore[Data]{client: client, ttl: ttl, scanBatch: scanBatch}
}

func (s *SessionStore[Data]) GetByToken(ctx context.Context, token string) (*session.Session[Data], error) {
	id, err := s.client.Get(ctx, sessionTokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("resolve session token: %w", err)
	}

	raw, err := s.client.Get(ctx, sessionIDPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("load session record: %w", err)
	}

	var rec sessionRecord[Data]
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session record: %w", err)
	}
	if rec.Token != token {
		// Stale token index left over from a rotation.
		return nil, session.ErrNotFound
	}

	return &session.Session[Data]{
		ID:                rec.ID,
		Token:             rec.Token,
		UserID:            rec.UserID,
		StartedAt:         rec.StartedAt,
		LastActivity:      rec.LastActivity,
		IP:                rec.IP,
		UserAgent:         rec.UserAgent,
		AcceptLanguage:    rec.AcceptLanguage,
		AcceptEncoding:    rec.AcceptEncoding,
		Fingerprint:       rec.Fingerprint,
		CSRFToken:         rec.CSRFToken,
		RegenerationCount: rec.RegenerationCount,
		Data:              rec.Data,
	}, nil
}

func (s *SessionStore[Data]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := s.client.Exists(ctx, sessionIDPrefix+id.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check session existence: %w", err)
	}
	return n > 0, nil
}

// Upsert writes the record and its token index. When a rotation replaced the
// token, the previous index key is removed in the same pipeline so the old
// identifier stops resolving.
func (s *SessionStore[Data]) Upsert(ctx context.Context, sess *session.Session[Data]) error {
	rec := sessionRecord[Data]{
		ID:                sess.ID,
		Token:             sess.Token,
		UserID:            sess.UserID,
		StartedAt:         sess.StartedAt,
		LastActivity:      sess.LastActivity,
		IP:                sess.IP,
		UserAgent:         sess.UserAgent,
		AcceptLanguage:    sess.AcceptLanguage,
		AcceptEncoding:    sess.AcceptEncoding,
		Fingerprint:       sess.Fingerprint,
		CSRFToken:         sess.CSRFToken,
		RegenerationCount: sess.RegenerationCount,
		Data:              sess.Data,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}

	var oldToken string
	if prev, err := s.client.Get(ctx, sessionIDPrefix+sess.ID.String()).Bytes(); err == nil {
		var old sessionRecord[Data]
		if json.Unmarshal(prev, &old) == nil && old.Token != sess.Token {
			oldToken = old.Token
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionIDPrefix+sess.ID.String(), raw, s.ttl)
	pipe.Set(ctx, sessionTokenPrefix+sess.Token, sess.ID.String(), s.ttl)
	if oldToken != "" {
		pipe.Del(ctx, sessionTokenPrefix+oldToken)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SessionStore[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	raw, err := s.client.Get(ctx, sessionIDPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return session.ErrNotFound
		}
		return fmt.Errorf("load session record: %w", err)
	}

	keys := []string{sessionIDPrefix + id.String()}
	var rec sessionRecord[Data]
	if json.Unmarshal(raw, &rec) == nil && rec.Token != "" {
		keys = append(keys, sessionTokenPrefix+rec.Token)
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore[Data]) CountInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.countRecords(ctx, func(rec *sessionRecord[Data]) bool {
		return rec.LastActivity.Before(cutoff)
	})
}

// DeleteInactiveBefore removes sessions whose last activity predates the
// cutoff. TTL expiry usually gets there first; this covers deployments that
// shorten the lifetime after sessions were written.
func (s *SessionStore[Data]) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := s.scanRecords(ctx, func(key string, rec *sessionRecord[Data]) error {
		if !rec.LastActivity.Before(cutoff) {
			return nil
		}
		if err := s.client.Del(ctx, key, sessionTokenPrefix+rec.Token).Err(); err != nil {
			return err
		}
		deleted++
		return nil
	})
	if err != nil {
		return deleted, fmt.Errorf("delete inactive sessions: %w", err)
	}
	return deleted, nil
}

func (s *SessionStore[Data]) CountTotal(ctx context.Context) (int64, error) {
	return s.countRecords(ctx, func(*sessionRecord[Data]) bool { return true })
}

func (s *SessionStore[Data]) CountActiveSince(ctx context.Context, t time.Time) (int64, error) {
	return s.countRecords(ctx, func(rec *sessionRecord[Data]) bool {
		return !rec.LastActivity.Before(t)
	})
}

// UpdateUserLastSeen keeps per-user activity metadata in a hash with the same
// lifetime as the session that produced it.
func (s *SessionStore[Data]) UpdateUserLastSeen(ctx context.Context, userID uuid.UUID, seenAt time.Time, ip, userAgent string) error {
	key := userLastSeenPrefix + userID.String()
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"seen_at", seenAt.UTC().Format(time.RFC3339Nano),
		"ip", ip,
		"user_agent", userAgent,
	)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update user last seen: %w", err)
	}
	return nil
}

func (s *SessionStore[Data]) countRecords(ctx context.Context, match func(*sessionRecord[Data]) bool) (int64, error) {
	var n int64
	err := s.scanRecords(ctx, func(_ string, rec *sessionRecord[Data]) error {
		if match(rec) {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (s *SessionStore[Data]) scanRecords(ctx context.Context, fn func(key string, rec *sessionRecord[Data]) error) error {
	iter := s.client.Scan(ctx, 0, sessionIDPrefix+"*", s.scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue // expired between scan and get
			}
			return err
		}
		var rec sessionRecord[Data]
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue // skip malformed records rather than blocking maintenance
		}
		if err := fn(key, &rec); err != nil {
			return err
		}
	}
	return iter.Err()
}
