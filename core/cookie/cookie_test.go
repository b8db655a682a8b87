package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitwars/backend/core/cookie"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newManager(t *testing.T, secrets ...string) *cookie.Manager {
	t.Helper()
	if len(secrets) == 0 {
		secrets = []string{testSecret}
	}
	m, err := cookie.New(secrets)
	require.NoError(t, err)
	return m
}

// requestWithCookies replays the cookies a recorder captured onto a fresh request.
func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty secrets", func(t *testing.T) {
		t.Parallel()

		_, err := cookie.New(nil)
		assert.ErrorIs(t, err, cookie.ErrNoSecret)

		_, err = cookie.New([]string{""})
		assert.ErrorIs(t, err, cookie.ErrNoSecret)
	})

	t.Run("rejects short secrets", func(t *testing.T) {
		t.Parallel()

		_, err := cookie.New([]string{"too-short"})
		assert.ErrorIs(t, err, cookie.ErrSecretTooShort)
	})
}

func TestSignedRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("set and get signed value", func(t *testing.T) {
		t.Parallel()

		m := newManager(t)
		rec := httptest.NewRecorder()

		require.NoError(t, m.SetSigned(rec, "session", "token-value"))

		got, err := m.GetSigned(requestWithCookies(rec), "session")
		require.NoError(t, err)
		assert.Equal(t, "token-value", got)
	})

	t.Run("applies secure defaults", func(t *testing.T) {
		t.Parallel()

		m := newManager(t)
		rec := httptest.NewRecorder()

		require.NoError(t, m.SetSigned(rec, "session", "token-value"))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
		assert.Equal(t, "/", cookies[0].Path)
	})

	t.Run("detects tampering", func(t *testing.T) {
		t.Parallel()

		m := newManager(t)
		rec := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(rec, "session", "token-value"))

		c := rec.Result().Cookies()[0]
		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value + "x"})

		_, err := m.GetSigned(r, "session")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("verifies against rotated secrets", func(t *testing.T) {
		t.Parallel()

		oldSecret := strings.Repeat("o", 32)
		older, err := cookie.New([]string{oldSecret})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		require.NoError(t, older.SetSigned(rec, "session", "token-value"))

		// New primary secret, old one kept for verification.
		rotated := newManager(t, testSecret, oldSecret)
		got, err := rotated.GetSigned(requestWithCookies(rec), "session")
		require.NoError(t, err)
		assert.Equal(t, "token-value", got)
	})

	t.Run("missing cookie", func(t *testing.T) {
		t.Parallel()

		m := newManager(t)
		_, err := m.GetSigned(httptest.NewRequest("GET", "/", nil), "session")
		assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	rec := httptest.NewRecorder()
	m.Delete(rec, "session")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}

func TestSizeLimit(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	rec := httptest.NewRecorder()

	err := m.Set(rec, "big", strings.Repeat("a", cookie.MaxCookieSize))
	var tooLarge cookie.ErrCookieTooLarge
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, "big", tooLarge.Name)
}
