package fingerprint_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitwars/backend/pkg/fingerprint"
)

func testAttrs() fingerprint.Attributes {
	return fingerprint.Attributes{
		IP:             "203.0.113.5",
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0",
		AcceptLanguage: "de-DE,de;q=0.9",
		AcceptEncoding: "gzip, deflate, br",
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("is deterministic for identical attributes", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, fingerprint.Generate(testAttrs()), fingerprint.Generate(testAttrs()))
	})

	t.Run("has versioned format", func(t *testing.T) {
		t.Parallel()

		fp := fingerprint.Generate(testAttrs())
		assert.True(t, strings.HasPrefix(fp, "v1:"))
		assert.Len(t, fp, 67)
	})

	t.Run("changes when any component changes", func(t *testing.T) {
		t.Parallel()

		base := fingerprint.Generate(testAttrs())

		changed := testAttrs()
		changed.IP = "203.0.113.6"
		assert.NotEqual(t, base, fingerprint.Generate(changed))

		changed = testAttrs()
		changed.UserAgent = "curl/8.0"
		assert.NotEqual(t, base, fingerprint.Generate(changed))

		changed = testAttrs()
		changed.AcceptLanguage = "en-US"
		assert.NotEqual(t, base, fingerprint.Generate(changed))

		changed = testAttrs()
		changed.AcceptEncoding = "identity"
		assert.NotEqual(t, base, fingerprint.Generate(changed))
	})

	t.Run("empty components cannot shift into neighbours", func(t *testing.T) {
		t.Parallel()

		a := fingerprint.Attributes{UserAgent: "ab"}
		b := fingerprint.Attributes{UserAgent: "a", AcceptLanguage: "b"}
		assert.NotEqual(t, fingerprint.Generate(a), fingerprint.Generate(b))
	})

	t.Run("ignores IP when excluded", func(t *testing.T) {
		t.Parallel()

		a := testAttrs()
		b := testAttrs()
		b.IP = "198.51.100.1"
		assert.Equal(t,
			fingerprint.Generate(a, fingerprint.WithoutIP()),
			fingerprint.Generate(b, fingerprint.WithoutIP()),
		)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("matches stored fingerprint", func(t *testing.T) {
		t.Parallel()

		stored := fingerprint.Generate(testAttrs())
		assert.NoError(t, fingerprint.Validate(testAttrs(), stored))
	})

	t.Run("mismatch on changed attributes", func(t *testing.T) {
		t.Parallel()

		stored := fingerprint.Generate(testAttrs())
		current := testAttrs()
		current.UserAgent = "Mozilla/5.0 (Windows NT 10.0) Chrome/126.0"

		assert.ErrorIs(t, fingerprint.Validate(current, stored), fingerprint.ErrMismatch)
	})

	t.Run("rejects malformed stored value", func(t *testing.T) {
		t.Parallel()

		for _, stored := range []string{"", "v1:tooshort", "v2:" + strings.Repeat("a", 64), strings.Repeat("a", 67)} {
			assert.ErrorIs(t, fingerprint.Validate(testAttrs(), stored), fingerprint.ErrInvalidFingerprint)
		}
	})

	t.Run("options must match generation options", func(t *testing.T) {
		t.Parallel()

		stored := fingerprint.Generate(testAttrs(), fingerprint.WithoutIP())
		assert.ErrorIs(t, fingerprint.Validate(testAttrs(), stored), fingerprint.ErrMismatch)
		assert.NoError(t, fingerprint.Validate(testAttrs(), stored, fingerprint.WithoutIP()))
	})
}

func TestFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.5:44211"
	r.Header.Set("User-Agent", "Mozilla/5.0 Firefox/128.0")
	r.Header.Set("Accept-Language", "de-DE")
	r.Header.Set("Accept-Encoding", "gzip")

	attrs := fingerprint.FromRequest(r)
	require.Equal(t, "203.0.113.5", attrs.IP)
	assert.Equal(t, "Mozilla/5.0 Firefox/128.0", attrs.UserAgent)
	assert.Equal(t, "de-DE", attrs.AcceptLanguage)
	assert.Equal(t, "gzip", attrs.AcceptEncoding)
}
