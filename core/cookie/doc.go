// Package cookie provides HMAC-signed HTTP cookie management with key
// rotation support.
//
// The manager signs cookie values with HMAC-SHA256 so tampering is detected
// server-side. Multiple secrets can be configured: the first signs new
// cookies, all of them verify, which lets keys rotate without logging every
// player out.
//
//	manager, err := cookie.New([]string{newSecret, oldSecret})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Set the session cookie (HTTP-only, SameSite=Strict by default)
//	err = manager.SetSigned(w, "session", token,
//		cookie.WithSecure(r.TLS != nil),
//		cookie.WithMaxAge(86400),
//	)
//
//	// Read it back on the next request
//	token, err := manager.GetSigned(r, "session")
//
// Defaults are deliberately conservative: Path=/, HttpOnly on, SameSite
// Strict. Override per cookie with functional options.
package cookie
