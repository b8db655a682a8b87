package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence collaborator for session management. It executes
// parameterized CRUD against a sessions table plus one operation against the
// users table; implementations must be safe for concurrent use. Cross-process
// concurrency (two simultaneous requests finalizing the same session) is
// resolved by the store's own replace-by-primary-key semantics, not by any
// lock in this package.
type Store[Data any] interface {
	// GetByToken restores a session by its client-facing identifier.
	// Returns ErrNotFound when no row matches.
	GetByToken(ctx context.Context, token string) (*Session[Data], error)

	// Exists reports whether a row for the session still exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// Upsert persists the full session record, replacing by primary key.
	// Idempotent: replaying the same record is a no-op.
	Upsert(ctx context.Context, sess *Session[Data]) error

	// Delete removes the row for the given session. Deleting an absent
	// session returns ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountInactiveBefore counts rows whose last activity predates cutoff.
	CountInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteInactiveBefore removes rows whose last activity predates cutoff
	// and returns the number of rows deleted. Rows at or after the cutoff
	// are left untouched.
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// CountTotal counts all persisted sessions.
	CountTotal(ctx context.Context) (int64, error)

	// CountActiveSince counts sessions whose last activity is at or after t.
	CountActiveSince(ctx context.Context, t time.Time) (int64, error)

	// UpdateUserLastSeen pushes last activity, client IP, and user agent
	// onto the player's profile record.
	UpdateUserLastSeen(ctx context.Context, userID uuid.UUID, seenAt time.Time, ip, userAgent string) error
}
