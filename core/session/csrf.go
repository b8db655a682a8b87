package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// csrfTokenBytes is the CSRF token entropy: 256 bits, rendered as 64 hex chars.
const csrfTokenBytes = 32

// generateCSRFToken creates a cryptographically secure CSRF token.
func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RotateCSRFToken replaces the current CSRF token. The previous token fails
// validation immediately.
func (s *Session[Data]) RotateCSRFToken() error {
	token, err := generateCSRFToken()
	if err != nil {
		return errors.Join(ErrTokenGeneration, err)
	}
	s.CSRFToken = token
	s.modified = true
	return nil
}

// ValidateCSRFToken reports whether the supplied token equals the currently
// active token. The comparison is constant time so timing does not depend on
// the mismatch position. A mismatch is an expected outcome, not an error;
// rejecting the state-changing request is the caller's decision.
func (s Session[Data]) ValidateCSRFToken(token string) bool {
	if s.CSRFToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.CSRFToken), []byte(token)) == 1
}
