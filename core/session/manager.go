package session

import (
	"context"
	"errors"
	"time"

	"github.com/orbitwars/backend/pkg/clientip"
	"github.com/orbitwars/backend/pkg/fingerprint"
)

// Manager owns the lifecycle of sessions: creation, restoration, validation,
// identifier regeneration, finalization, and destruction. One session object
// is created or restored per request, mutated synchronously, and flushed once
// at request end; the manager holds no cross-request state of its own.
type Manager[Data any] struct {
	store Store[Data]
	cfg   *Config
}

// NewManager creates a session manager backed by the given store.
func NewManager[Data any](store Store[Data], opts ...Option) (*Manager[Data], error) {
	if store == nil {
		return nil, ErrNoStore
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Manager[Data]{store: store, cfg: cfg}, nil
}

// New starts a fresh anonymous session for the given client attributes.
// Nothing is persisted until Save runs and the session is authenticated.
func (m *Manager[Data]) New(attrs ClientAttributes) (Session[Data], error) {
	return New[Data](attrs, m.cfg.fingerprintOpts...)
}

// Load restores previously persisted session state by its identifier.
// Returns ErrNotFound when no row matches; the caller falls back to New.
func (m *Manager[Data]) Load(ctx context.Context, token string) (Session[Data], error) {
	if token == "" {
		return Session[Data]{}, ErrNotFound
	}

	sess, err := m.store.GetByToken(ctx, token)
	if err != nil {
		return Session[Data]{}, err
	}

	restored := *sess
	restored.markRestored()
	return restored, nil
}

// Validate checks a restored session against the current request. All of the
// following must hold:
//
//  1. the sticky validity flag is still set,
//  2. the current client IP matches the captured one at the configured
//     block granularity,
//  3. the session has not aged out (LastActivity + MaxLifetime >= now),
//  4. the fingerprint recomputed from the current attributes equals the
//     stored one, compared in constant time,
//  5. a row for the session still exists in the backing store.
//
// Any failure marks the session invalid for the lifetime of this object and
// returns false. Validation failure is a normal outcome the caller reacts to
// by forcing re-authentication; it is never surfaced as an error.
func (m *Manager[Data]) Validate(ctx context.Context, sess *Session[Data], current ClientAttributes) bool {
	if sess == nil || !sess.valid {
		return false
	}

	if !m.validate(ctx, sess, current) {
		sess.Invalidate()
		return false
	}
	return true
}

func (m *Manager[Data]) validate(ctx context.Context, sess *Session[Data], current ClientAttributes) bool {
	if !clientip.Match(current.IP, sess.IP, m.cfg.IPBlocks) {
		return false
	}

	if sess.LastActivity.Add(m.cfg.MaxLifetime).Before(time.Now()) {
		return false
	}

	if fingerprint.Validate(current.fingerprintAttributes(), sess.Fingerprint, m.cfg.fingerprintOpts...) != nil {
		return false
	}

	exists, err := m.store.Exists(ctx, sess.ID)
	if err != nil || !exists {
		return false
	}

	return true
}

// ShouldRegenerate reports whether the identifier is due for rotation:
// LastActivity + RegenerationInterval < now. Periodic rotation bounds how
// long a fixated or leaked identifier stays usable.
func (m *Manager[Data]) ShouldRegenerate(sess *Session[Data]) bool {
	if sess == nil || sess.Token == "" {
		return false
	}
	return sess.LastActivity.Add(m.cfg.RegenerationInterval).Before(time.Now())
}

// Regenerate rotates the session identifier and CSRF token and increments the
// regeneration counter. Only effective while the session is active; inactive
// or invalidated sessions are left untouched. The old identifier is
// invalidated server-side when the rotated record is persisted, since the
// upsert keyed by the stable ID overwrites it.
func (m *Manager[Data]) Regenerate(ctx context.Context, sess *Session[Data]) error {
	if sess == nil || sess.Token == "" || !sess.valid {
		return nil
	}
	return sess.rotate()
}

// Save is the end-of-request finalize step. Policy, in order:
//
//  1. no identifier present: nothing to save,
//  2. anonymous session: delete any persisted row and destroy the in-memory
//     state instead of storing,
//  3. otherwise: refresh LastActivity, regenerate first when the rotation
//     interval has elapsed, persist the full record, and push last-seen data
//     onto the player's profile.
//
// Regeneration strictly precedes persistence so the stored row carries the
// new identifier and CSRF token, never a stale pair.
func (m *Manager[Data]) Save(ctx context.Context, sess *Session[Data]) error {
	if sess == nil || sess.Token == "" {
		return nil
	}

	if sess.IsAnonymous() {
		if err := m.store.Delete(ctx, sess.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return errors.Join(ErrDeleteSession, err)
		}
		sess.destroy()
		return nil
	}

	// Rotation is due based on the activity timestamp before this refresh.
	regenerate := m.ShouldRegenerate(sess)
	sess.Touch(time.Now())

	if regenerate {
		if err := m.Regenerate(ctx, sess); err != nil {
			return err
		}
	}

	if err := m.store.Upsert(ctx, sess); err != nil {
		return errors.Join(ErrSaveSession, err)
	}

	if err := m.store.UpdateUserLastSeen(ctx, sess.UserID, sess.LastActivity, sess.IP, sess.UserAgent); err != nil {
		return errors.Join(ErrSaveSession, err)
	}

	sess.modified = false
	return nil
}

// Delete removes the persisted row, clears the in-memory state, and marks the
// session invalid. Used for logout and forced invalidation.
func (m *Manager[Data]) Delete(ctx context.Context, sess *Session[Data]) error {
	if sess == nil {
		return nil
	}

	err := m.store.Delete(ctx, sess.ID)
	sess.destroy()

	if err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Join(ErrDeleteSession, err)
	}
	return nil
}

// CleanupExpired bulk-deletes sessions whose last activity predates
// now - MaxLifetime, returning the number of rows removed. Invoked by an
// external scheduler, not request-scoped.
func (m *Manager[Data]) CleanupExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteInactiveBefore(ctx, time.Now().Add(-m.cfg.MaxLifetime))
}

// Stats reports aggregate session counts for monitoring.
type Stats struct {
	Total  int64
	Active int64
}

// Stats counts total persisted sessions and those active within the
// configured recency window.
func (m *Manager[Data]) Stats(ctx context.Context) (Stats, error) {
	total, err := m.store.CountTotal(ctx)
	if err != nil {
		return Stats{}, err
	}

	active, err := m.store.CountActiveSince(ctx, time.Now().Add(-m.cfg.ActiveWindow))
	if err != nil {
		return Stats{}, err
	}

	return Stats{Total: total, Active: active}, nil
}

// MaxLifetime returns the configured session idle timeout.
func (m *Manager[Data]) MaxLifetime() time.Duration {
	return m.cfg.MaxLifetime
}
