package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/orbitwars/backend/pkg/fingerprint"
)

// Session represents one browser session with generic game-state storage.
// The Data type parameter allows application-specific session payloads
// (active planet, fleet drafts, UI preferences).
type Session[Data any] struct {
	// ID is the stable server-side key for the persisted row. It never
	// changes, which lets token rotation replace the client-facing
	// identifier atomically: the upsert keyed by ID overwrites the old
	// token so the previous identifier is invalidated server-side.
	ID uuid.UUID

	// Token is the opaque client-facing session identifier carried in the
	// cookie (32 bytes, base64url). Rotated by Regenerate and on
	// authentication to defeat session fixation.
	Token string

	// UserID identifies the authenticated player (uuid.Nil for anonymous
	// sessions). Anonymous sessions are never persisted server-side.
	UserID uuid.UUID

	StartedAt    time.Time
	LastActivity time.Time

	// Client attributes captured at creation. These are the fingerprint's
	// source of truth and are never recomputed from later requests.
	IP             string
	UserAgent      string
	AcceptLanguage string
	AcceptEncoding string

	// Fingerprint is the v1:-prefixed SHA-256 digest over
	// ip|userAgent|acceptLanguage|acceptEncoding, computed once at creation.
	Fingerprint string

	// CSRFToken is 256 bits of cryptographically secure randomness, hex
	// encoded. It rotates whenever Token rotates; an in-flight request
	// carrying the stale token fails CSRF checks from that point on.
	CSRFToken string

	// RegenerationCount increments by one on each identifier rotation.
	RegenerationCount int

	// Data holds the game-specific session state.
	Data Data

	// valid is sticky: once validation fails, the in-memory object stays
	// invalid regardless of later state changes.
	valid bool

	// modified tracks whether the session needs saving.
	modified bool
}

// ClientAttributes are the request characteristics captured when a session is
// created and compared during validation.
type ClientAttributes struct {
	IP             string
	UserAgent      string
	AcceptLanguage string
	AcceptEncoding string
}

func (a ClientAttributes) fingerprintAttributes() fingerprint.Attributes {
	return fingerprint.Attributes{
		IP:             a.IP,
		UserAgent:      a.UserAgent,
		AcceptLanguage: a.AcceptLanguage,
		AcceptEncoding: a.AcceptEncoding,
	}
}

// New creates a fresh anonymous session bound to the given client attributes.
// StartedAt and LastActivity are set to now, the fingerprint is computed from
// the captured attributes, and a CSRF token is issued.
//
// Fingerprint options must match the ones later validation uses; when going
// through a Manager, use Manager.New which threads its configuration through.
func New[Data any](attrs ClientAttributes, fpOpts ...fingerprint.Option) (Session[Data], error) {
	if attrs.IP == "" {
		return Session[Data]{}, ErrMissingIP
	}

	token, err := generateToken()
	if err != nil {
		return Session[Data]{}, errors.Join(ErrTokenGeneration, err)
	}

	csrfToken, err := generateCSRFToken()
	if err != nil {
		return Session[Data]{}, errors.Join(ErrTokenGeneration, err)
	}

	now := time.Now()
	return Session[Data]{
		ID:             uuid.New(),
		Token:          token,
		UserID:         uuid.Nil,
		StartedAt:      now,
		LastActivity:   now,
		IP:             attrs.IP,
		UserAgent:      attrs.UserAgent,
		AcceptLanguage: attrs.AcceptLanguage,
		AcceptEncoding: attrs.AcceptEncoding,
		Fingerprint:    fingerprint.Generate(attrs.fingerprintAttributes(), fpOpts...),
		CSRFToken:      csrfToken,
		Data:           *new(Data),
		valid:          true,
		modified:       true,
	}, nil
}

// Authenticate binds the session to a player. The identifier and CSRF token
// rotate so a fixated pre-login identifier cannot survive authentication.
// Optional data parameter sets session data.
func (s *Session[Data]) Authenticate(userID uuid.UUID, data ...Data) error {
	if err := s.rotate(); err != nil {
		return err
	}
	s.UserID = userID
	if len(data) > 0 {
		s.Data = data[0]
	}
	s.modified = true
	return nil
}

// SetData updates the session's game state.
func (s *Session[Data]) SetData(data Data) {
	s.Data = data
	s.modified = true
}

// Touch advances LastActivity to now. LastActivity is monotonically
// non-decreasing: a clock step backwards never rewinds it.
func (s *Session[Data]) Touch(now time.Time) {
	if now.After(s.LastActivity) {
		s.LastActivity = now
		s.modified = true
	}
}

// IsAuthenticated returns true if the session belongs to a player.
func (s Session[Data]) IsAuthenticated() bool {
	return s.UserID != uuid.Nil && s.Token != ""
}

// IsAnonymous returns true when no player is bound to the session.
func (s Session[Data]) IsAnonymous() bool {
	return s.UserID == uuid.Nil
}

// IsValid reports the sticky validity flag. It starts true for created and
// restored sessions and is cleared by Invalidate; nothing sets it back.
func (s Session[Data]) IsValid() bool {
	return s.valid
}

// Invalidate clears the validity flag for the lifetime of this object.
func (s *Session[Data]) Invalidate() {
	s.valid = false
}

// IsModified returns true if the session has been modified and needs saving.
func (s Session[Data]) IsModified() bool {
	return s.modified
}

// markRestored flags a store-loaded session as valid; lazily set at restore
// time, before any validation runs against it.
func (s *Session[Data]) markRestored() {
	s.valid = true
	s.modified = false
}

// destroy wipes the in-memory state, leaving an invalid zero session.
func (s *Session[Data]) destroy() {
	*s = Session[Data]{}
}

// rotate issues a new identifier and CSRF token and bumps the counter.
func (s *Session[Data]) rotate() error {
	token, err := generateToken()
	if err != nil {
		return errors.Join(ErrTokenGeneration, err)
	}
	csrfToken, err := generateCSRFToken()
	if err != nil {
		return errors.Join(ErrTokenGeneration, err)
	}

	s.Token = token
	s.CSRFToken = csrfToken
	s.RegenerationCount++
	s.modified = true
	return nil
}

// generateToken creates a cryptographically secure random token using 32 bytes
// (256 bits) encoded as base64 URL-safe string without padding.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
