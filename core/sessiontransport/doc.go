// Package sessiontransport binds the session lifecycle to HTTP.
//
// The Cookie transport carries the opaque session identifier in an
// HMAC-signed, HTTP-only, SameSite-Strict cookie that is Secure whenever the
// connection uses TLS. The CSRF token and session payload never travel
// client-side.
//
// The middleware replaces the legacy pattern of a process-wide "current
// session" plus a shutdown hook with an explicit context object and a scoped
// finalize: the session is loaded once per request, injected into the request
// context, and saved exactly once when the request scope exits - including on
// panic. Handlers access it through FromContext and mutate it in place.
//
//	mgr, _ := session.NewManager[GameState](store)
//	cookies, _ := cookie.New([]string{secret})
//	transport := sessiontransport.NewCookie(mgr, cookies, "session")
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("/planet", func(w http.ResponseWriter, r *http.Request) {
//		sess := sessiontransport.MustFromContext[GameState](r.Context())
//		sess.SetData(GameState{ActivePlanetID: 3})
//	})
//
//	handler := sessiontransport.Middleware(transport)(mux)
//
// A failed validation during load (expired, fingerprint mismatch, row gone)
// is not an error: the client silently receives a fresh anonymous session and
// must re-authenticate.
//
// RequireCSRF guards state-changing methods; whether and where to mount it is
// the application's decision, the session core only answers yes/no.
package sessiontransport
