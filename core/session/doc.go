// Package session owns the lifecycle of one authenticated browser session:
// creation, validation, renewal, and destruction.
//
// Sessions carry a generic Data payload for game-specific state (active
// planet, UI preferences) alongside fixed security fields: a rotating opaque
// identifier, a CSRF token, a device fingerprint, and the client attributes
// captured at creation.
//
// # Core Components
//
//   - Session[Data]: the session entity with application-defined data
//   - Manager[Data]: coordinates lifecycle operations against a Store
//   - Store[Data]: persistence collaborator (Postgres, Redis)
//
// # Basic Usage
//
//	type GameState struct {
//		ActivePlanetID int64 `json:"active_planet_id"`
//	}
//
//	manager, err := session.NewManager[GameState](store,
//		session.WithMaxLifetime(24*time.Hour),
//		session.WithRegenerationInterval(5*time.Minute),
//		session.WithIPBlocks(2),
//	)
//
// Per request: restore with Load (fall back to New when nothing is stored),
// check with Validate, and finalize exactly once with Save. The
// sessiontransport package wires this sequence into HTTP middleware with a
// guaranteed finalize on every exit path.
//
// # Validation
//
// Validate is an all-of check: sticky validity flag, IP match at block
// granularity, idle-timeout, constant-time fingerprint comparison, and row
// existence in the store. A failed validation is a normal boolean outcome
// that forces re-authentication, never an error, and it is sticky: the
// in-memory object stays invalid no matter what happens later.
//
// # Identifier rotation
//
// Identifiers rotate periodically (ShouldRegenerate/Regenerate) and on
// authentication, which defeats session fixation: an identifier planted
// before login is useless afterwards. Rotation always issues a fresh CSRF
// token, and Save persists only after rotating, so the stored row never
// carries a stale identifier/token pair.
//
// # Persistence policy
//
// Anonymous sessions are never persisted: Save deletes any stored row and
// destroys the in-memory state. Authenticated sessions are upserted keyed by
// the stable session ID, which also invalidates the previous identifier after
// a rotation. Save additionally pushes last-seen data (timestamp, IP, user
// agent) onto the player's profile.
//
// # Maintenance
//
// CleanupExpired bulk-deletes aged-out rows and Stats reports total vs
// recently-active counts. Both are meant for an external scheduler (cron),
// not for request handling; nothing in this package self-schedules.
package session
