package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orbitwars/backend/core/session"
	"github.com/orbitwars/backend/pkg/fingerprint"
)

// mockStore implements session.Store for testing.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetByToken(ctx context.Context, token string) (*session.Session[testData], error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session[testData]), args.Error(1)
}

func (m *mockStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) Upsert(ctx context.Context, sess *session.Session[testData]) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockStore) CountInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) CountTotal(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) CountActiveSince(ctx context.Context, t time.Time) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) UpdateUserLastSeen(ctx context.Context, userID uuid.UUID, seenAt time.Time, ip, userAgent string) error {
	args := m.Called(ctx, userID, seenAt, ip, userAgent)
	return args.Error(0)
}

func newManager(t *testing.T, store session.Store[testData], opts ...session.Option) *session.Manager[testData] {
	t.Helper()
	mgr, err := session.NewManager[testData](store, opts...)
	require.NoError(t, err)
	return mgr
}

func TestNewManager(t *testing.T) {
	t.Parallel()

	t.Run("requires a store", func(t *testing.T) {
		t.Parallel()

		_, err := session.NewManager[testData](nil)
		assert.ErrorIs(t, err, session.ErrNoStore)
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		mgr := newManager(t, &mockStore{}, session.WithMaxLifetime(time.Hour))
		assert.Equal(t, time.Hour, mgr.MaxLifetime())
	})
}

func TestManager_Load(t *testing.T) {
	t.Parallel()

	t.Run("restores stored session as valid", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store)
		ctx := context.Background()

		stored, err := session.New[testData](testAttrs())
		require.NoError(t, err)
		store.On("GetByToken", ctx, stored.Token).Return(&stored, nil)

		restored, err := mgr.Load(ctx, stored.Token)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, restored.ID)
		assert.True(t, restored.IsValid())
		assert.False(t, restored.IsModified())
		store.AssertExpectations(t)
	})

	t.Run("propagates ErrNotFound", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store)
		ctx := context.Background()

		store.On("GetByToken", ctx, "missing").Return(nil, session.ErrNotFound)

		_, err := mgr.Load(ctx, "missing")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("empty token is not found", func(t *testing.T) {
		t.Parallel()

		mgr := newManager(t, &mockStore{})
		_, err := mgr.Load(context.Background(), "")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestManager_Validate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	newSession := func(t *testing.T) session.Session[testData] {
		t.Helper()
		sess, err := session.New[testData](testAttrs())
		require.NoError(t, err)
		return sess
	}

	t.Run("valid immediately after creation", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store)
		sess := newSession(t)
		store.On("Exists", ctx, sess.ID).Return(true, nil)

		assert.True(t, mgr.Validate(ctx, &sess, testAttrs()))
	})

	t.Run("default fingerprint pins the exact IP", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store, session.WithIPBlocks(2))
		sess := newSession(t)

		// Same 203.0 prefix, different host: passes the block check but
		// fails the strict fingerprint, which hashes the exact address.
		current := testAttrs()
		current.IP = "203.0.99.80"

		assert.False(t, mgr.Validate(ctx, &sess, current))
	})

	t.Run("WithoutIP fingerprint tolerates in-block rotation", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store,
			session.WithIPBlocks(2),
			session.WithFingerprintOptions(fingerprint.WithoutIP()),
		)

		sess, err := mgr.New(testAttrs())
		require.NoError(t, err)
		store.On("Exists", ctx, sess.ID).Return(true, nil)

		current := testAttrs()
		current.IP = "203.0.99.80"
		assert.True(t, mgr.Validate(ctx, &sess, current))

		// A different /16 still fails the block check.
		elsewhere := testAttrs()
		elsewhere.IP = "198.51.100.7"
		assert.False(t, mgr.Validate(ctx, &sess, elsewhere))
	})

	t.Run("rejects IP outside the configured blocks", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store, session.WithIPBlocks(2))
		sess := newSession(t)

		current := testAttrs()
		current.IP = "198.51.100.7"

		assert.False(t, mgr.Validate(ctx, &sess, current))
		assert.False(t, sess.IsValid())
	})

	t.Run("rejects aged-out session", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store, session.WithMaxLifetime(time.Hour))
		sess := newSession(t)
		sess.LastActivity = time.Now().Add(-2 * time.Hour)

		assert.False(t, mgr.Validate(ctx, &sess, testAttrs()))
	})

	t.Run("rejects fingerprint mismatch", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store)
		sess := newSession(t)

		current := testAttrs()
		current.UserAgent = "Mozilla/5.0 (Windows NT 10.0) Chrome/126.0"

		assert.False(t, mgr.Validate(ctx, &sess, current))
	})

	t.Run("rejects session whose row vanished", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store)
		sess := newSession(t)
		store.On("Exists", ctx, sess.ID).Return(false, nil)

		assert.False(t, mgr.Validate(ctx, &sess, testAttrs()))
	})

	t.Run("failure is sticky", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store)
		sess := newSession(t)
		store.On("Exists", ctx, sess.ID).Return(false, nil).Once()

		require.False(t, mgr.Validate(ctx, &sess, testAttrs()))

		// The row coming back does not resurrect the in-memory object.
		store.On("Exists", ctx, sess.ID).Return(true, nil).Maybe()
		assert.False(t, mgr.Validate(ctx, &sess, testAttrs()))
	})
}

func TestManager_Regenerate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("rotates identifier, counter, and CSRF token", func(t *testing.T) {
		t.Parallel()

		mgr := newManager(t, &mockStore{})
		sess, err := session.New[testData](testAttrs())
		require.NoError(t, err)

		oldToken := sess.Token
		oldCSRF := sess.CSRFToken
		oldCount := sess.RegenerationCount

		require.NoError(t, mgr.Regenerate(ctx, &sess))

		assert.NotEqual(t, oldToken, sess.Token)
		assert.NotEqual(t, oldCSRF, sess.CSRFToken)
		assert.Equal(t, oldCount+1, sess.RegenerationCount)
		assert.False(t, sess.ValidateCSRFToken(oldCSRF))
	})

	t.Run("no-op without an active session", func(t *testing.T) {
		t.Parallel()

		mgr := newManager(t, &mockStore{})
		var empty session.Session[testData]

		require.NoError(t, mgr.Regenerate(ctx, &empty))
		assert.Empty(t, empty.Token)
		assert.Zero(t, empty.RegenerationCount)
	})
}

func TestManager_ShouldRegenerate(t *testing.T) {
	t.Parallel()

	mgr := newManager(t, &mockStore{}, session.WithRegenerationInterval(5*time.Minute))

	sess, err := session.New[testData](testAttrs())
	require.NoError(t, err)
	assert.False(t, mgr.ShouldRegenerate(&sess))

	sess.LastActivity = time.Now().Add(-6 * time.Minute)
	assert.True(t, mgr.ShouldRegenerate(&sess))
}

func TestManager_Save(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("no-op without identifier", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store)
		var empty session.Session[testData]

		require.NoError(t, mgr.Save(ctx, &empty))
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("anonymous session is deleted, never stored", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store)

		sess, err := session.New[testData](testAttrs())
		require.NoError(t, err)
		store.On("Delete", ctx, sess.ID).Return(session.ErrNotFound)

		require.NoError(t, mgr.Save(ctx, &sess))

		assert.Empty(t, sess.Token)
		assert.False(t, sess.IsValid())
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("persists authenticated session and pushes last seen", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store)

		sess, err := session.New[testData](testAttrs())
		require.NoError(t, err)
		userID := uuid.New()
		require.NoError(t, sess.Authenticate(userID))

		store.On("Upsert", ctx, &sess).Return(nil)
		store.On("UpdateUserLastSeen", ctx, userID, mock.AnythingOfType("time.Time"), sess.IP, sess.UserAgent).Return(nil)

		before := sess.LastActivity
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, mgr.Save(ctx, &sess))

		assert.True(t, sess.LastActivity.After(before))
		assert.False(t, sess.IsModified())
		store.AssertExpectations(t)
	})

	t.Run("regenerates before persisting when rotation is due", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store, session.WithRegenerationInterval(5*time.Minute))

		sess, err := session.New[testData](testAttrs())
		require.NoError(t, err)
		require.NoError(t, sess.Authenticate(uuid.New()))
		sess.LastActivity = time.Now().Add(-10 * time.Minute)

		staleToken := sess.Token
		staleCSRF := sess.CSRFToken

		// The persisted row must carry the rotated identifier, never the stale one.
		store.On("Upsert", ctx, mock.MatchedBy(func(s *session.Session[testData]) bool {
			return s.Token != staleToken && s.CSRFToken != staleCSRF
		})).Return(nil)
		store.On("UpdateUserLastSeen", ctx, sess.UserID, mock.AnythingOfType("time.Time"), sess.IP, sess.UserAgent).Return(nil)

		require.NoError(t, mgr.Save(ctx, &sess))
		assert.Equal(t, 2, sess.RegenerationCount)
		store.AssertExpectations(t)
	})

	t.Run("wraps store failures", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store)

		sess, err := session.New[testData](testAttrs())
		require.NoError(t, err)
		require.NoError(t, sess.Authenticate(uuid.New()))

		store.On("Upsert", ctx, &sess).Return(assert.AnError)

		err = mgr.Save(ctx, &sess)
		assert.ErrorIs(t, err, session.ErrSaveSession)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("removes row and destroys state", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store)

		sess, err := session.New[testData](testAttrs())
		require.NoError(t, err)
		store.On("Delete", ctx, sess.ID).Return(nil)

		require.NoError(t, mgr.Delete(ctx, &sess))

		assert.Empty(t, sess.Token)
		assert.Equal(t, uuid.Nil, sess.UserID)
		assert.False(t, sess.IsValid())
		store.AssertExpectations(t)
	})

	t.Run("missing row is not an error", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := newManager(t, store)

		sess, err := session.New[testData](testAttrs())
		require.NoError(t, err)
		store.On("Delete", ctx, sess.ID).Return(session.ErrNotFound)

		assert.NoError(t, mgr.Delete(ctx, &sess))
	})
}

func TestManager_CleanupExpired(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	mgr := newManager(t, store, session.WithMaxLifetime(time.Hour))
	ctx := context.Background()

	// Cutoff must sit one MaxLifetime in the past.
	store.On("DeleteInactiveBefore", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		return time.Since(cutoff) > 59*time.Minute && time.Since(cutoff) < 61*time.Minute
	})).Return(int64(3), nil)

	deleted, err := mgr.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	store.AssertExpectations(t)
}

func TestManager_Stats(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	mgr := newManager(t, store, session.WithActiveWindow(15*time.Minute))
	ctx := context.Background()

	store.On("CountTotal", ctx).Return(int64(120), nil)
	store.On("CountActiveSince", ctx, mock.AnythingOfType("time.Time")).Return(int64(37), nil)

	stats, err := mgr.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(120), stats.Total)
	assert.Equal(t, int64(37), stats.Active)
}
