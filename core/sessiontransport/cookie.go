package sessiontransport

import (
	"net/http"

	"github.com/orbitwars/backend/core/cookie"
	"github.com/orbitwars/backend/core/session"
	"github.com/orbitwars/backend/pkg/clientip"
)

// Cookie provides HTTP cookie-based session transport. The signed cookie
// carries only the opaque session identifier - never the CSRF token or any
// session payload.
type Cookie[Data any] struct {
	manager   *session.Manager[Data]
	cookieMgr *cookie.Manager
	name      string
}

// NewCookie creates a new cookie-based session transport.
func NewCookie[Data any](mgr *session.Manager[Data], cookieMgr *cookie.Manager, name string) *Cookie[Data] {
	return &Cookie[Data]{
		manager:   mgr,
		cookieMgr: cookieMgr,
		name:      name,
	}
}

// Attributes captures the current request's client attributes for session
// creation and validation.
func Attributes(r *http.Request) session.ClientAttributes {
	return session.ClientAttributes{
		IP:             clientip.GetIP(r),
		UserAgent:      r.UserAgent(),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		AcceptEncoding: r.Header.Get("Accept-Encoding"),
	}
}

// Load restores the session presented by the request cookie and validates it
// against the current client. A missing cookie, unknown identifier, or failed
// validation all degrade gracefully to a fresh anonymous session, forcing
// re-authentication without failing the request.
func (c *Cookie[Data]) Load(r *http.Request) (session.Session[Data], error) {
	attrs := Attributes(r)

	token, err := c.cookieMgr.GetSigned(r, c.name)
	if err != nil {
		return c.manager.New(attrs)
	}

	sess, err := c.manager.Load(r.Context(), token)
	if err != nil {
		return c.manager.New(attrs)
	}

	if !c.manager.Validate(r.Context(), &sess, attrs) {
		return c.manager.New(attrs)
	}

	return sess, nil
}

// Save finalizes the session through the manager and synchronizes the client
// cookie: a surviving session gets (re-)written with the current identifier
// and lifetime, a destroyed one gets its cookie expired. The Secure flag
// follows the connection, so the cookie is TLS-only whenever TLS is in use.
func (c *Cookie[Data]) Save(w http.ResponseWriter, r *http.Request, sess *session.Session[Data]) error {
	if err := c.manager.Save(r.Context(), sess); err != nil {
		return err
	}

	if sess.Token == "" {
		c.cookieMgr.Delete(w, c.name)
		return nil
	}

	return c.cookieMgr.SetSigned(w, c.name, sess.Token,
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteStrictMode),
		cookie.WithSecure(r.TLS != nil),
		cookie.WithMaxAge(int(c.manager.MaxLifetime().Seconds())),
	)
}

// Delete destroys the session server-side and expires the client cookie.
// Used for explicit logout.
func (c *Cookie[Data]) Delete(w http.ResponseWriter, r *http.Request, sess *session.Session[Data]) error {
	if err := c.manager.Delete(r.Context(), sess); err != nil {
		return err
	}

	c.cookieMgr.Delete(w, c.name)
	return nil
}
