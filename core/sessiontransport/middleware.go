package sessiontransport

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/orbitwars/backend/core/logger"
	"github.com/orbitwars/backend/core/session"
)

type sessionKey struct{}

// MiddlewareConfig configures the session middleware.
type MiddlewareConfig struct {
	// Skip defines a function to skip middleware execution for specific
	// requests (health checks, static assets).
	Skip func(r *http.Request) bool
	// Logger for structured logging (default: slog with io.Discard).
	Logger *slog.Logger
}

// Middleware wires the session lifecycle into request handling: it loads (or
// creates) the session, injects it into the request context, and finalizes it
// exactly once when the request scope exits - on normal return, early return,
// or panic alike. The finalize step is the single writer of session state for
// the request; handlers only mutate the in-memory object.
func Middleware[Data any](transport *Cookie[Data]) func(http.Handler) http.Handler {
	return MiddlewareWithConfig(transport, MiddlewareConfig{})
}

// MiddlewareWithConfig creates session middleware with custom configuration.
//
// Responses are buffered until the finalize step has run, because finalizing
// may rotate the session identifier and the Set-Cookie header must precede
// the body. On panic the buffered body is discarded, the session is still
// finalized, and the panic is re-raised for the server's recovery handling.
func MiddlewareWithConfig[Data any](transport *Cookie[Data], cfg MiddlewareConfig) func(http.Handler) http.Handler {
	if transport == nil {
		panic("sessiontransport: transport is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := transport.Load(r)
			if err != nil {
				cfg.Logger.ErrorContext(r.Context(), "failed to establish session",
					logger.Component("sessiontransport"), logger.Error(err))
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}

			bw := newBufferedWriter(w)
			ctx := withSession(r.Context(), &sess)

			defer func() {
				rec := recover()

				if err := transport.Save(bw, r, &sess); err != nil {
					cfg.Logger.ErrorContext(r.Context(), "failed to finalize session",
						logger.Component("sessiontransport"),
						logger.SessionID(sess.ID),
						logger.Error(err))
				}

				if rec != nil {
					panic(rec)
				}
				bw.flush()
			}()

			next.ServeHTTP(bw, r.WithContext(ctx))
		})
	}
}

// withSession stores the session pointer in the context so handler mutations
// are visible to the finalize step.
func withSession[Data any](ctx context.Context, sess *session.Session[Data]) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// FromContext retrieves the request's session.
// Returns the session and true if found, nil and false otherwise.
func FromContext[Data any](ctx context.Context) (*session.Session[Data], bool) {
	sess, ok := ctx.Value(sessionKey{}).(*session.Session[Data])
	return sess, ok
}

// MustFromContext retrieves the request's session or panics if absent.
// Use when the middleware is guaranteed to have run.
func MustFromContext[Data any](ctx context.Context) *session.Session[Data] {
	sess, ok := FromContext[Data](ctx)
	if !ok {
		panic("sessiontransport: session not found in context")
	}
	return sess
}

// bufferedWriter delays the response until the session finalize step has had
// its chance to write headers.
type bufferedWriter struct {
	w      http.ResponseWriter
	header http.Header
	body   bytes.Buffer
	status int
}

func newBufferedWriter(w http.ResponseWriter) *bufferedWriter {
	return &bufferedWriter{w: w, header: make(http.Header)}
}

func (b *bufferedWriter) Header() http.Header {
	return b.header
}

func (b *bufferedWriter) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedWriter) flush() {
	dst := b.w.Header()
	for key, values := range b.header {
		dst[key] = values
	}
	if b.status == 0 {
		b.status = http.StatusOK
	}
	b.w.WriteHeader(b.status)
	_, _ = b.w.Write(b.body.Bytes())
}
