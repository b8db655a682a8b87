package sessiontransport

import (
	"net/http"
)

const (
	// CSRFHeader is the request header checked for the CSRF token.
	CSRFHeader = "X-CSRF-Token"
	// CSRFField is the form field checked when the header is absent.
	CSRFField = "csrf_token"
)

// CSRFToken extracts the CSRF token a state-changing request carries, from
// the X-CSRF-Token header or the csrf_token form field.
func CSRFToken(r *http.Request) string {
	if token := r.Header.Get(CSRFHeader); token != "" {
		return token
	}
	return r.PostFormValue(CSRFField)
}

// RequireCSRF rejects state-changing requests whose CSRF token does not match
// the session's active token. Safe methods (GET, HEAD, OPTIONS, TRACE) pass
// through; everything else must carry the token issued with the session.
// Mount after the session middleware.
func RequireCSRF[Data any](next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next.ServeHTTP(w, r)
			return
		}

		sess, ok := FromContext[Data](r.Context())
		if !ok || !sess.ValidateCSRFToken(CSRFToken(r)) {
			http.Error(w, "invalid CSRF token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
