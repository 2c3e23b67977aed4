package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/weighin/weighin-go/session"
	"github.com/weighin/weighin-go/session/storagefakes"
)

const (
	testAccessToken  = "a"
	testRefreshToken = "b"
	testUserID       = "u1"
)

type storeFixture struct {
	storage *storagefakes.FakeStorage
	store   *session.Store
}

func setupStoreFixture(t *testing.T) *storeFixture {
	t.Helper()

	storage := storagefakes.NewFakeStorage()
	store, err := session.NewStore(storage)
	require.NoError(t, err)

	return &storeFixture{storage: storage, store: store}
}

func testSession() session.Session {
	return session.Session{
		AccessToken:  testAccessToken,
		RefreshToken: testRefreshToken,
		UserID:       testUserID,
	}
}

func TestNewStoreRequiresStorage(t *testing.T) {
	_, err := session.NewStore(nil)
	require.Error(t, err)
}

func TestSetAndAccessors(t *testing.T) {
	f := setupStoreFixture(t)

	require.NoError(t, f.store.Set(context.Background(), testSession()))

	require.Equal(t, testSession(), f.store.Current())
	require.Equal(t, testUserID, f.store.UserID())
}

func TestClearReturnsToLoggedOut(t *testing.T) {
	f := setupStoreFixture(t)
	require.NoError(t, f.store.Set(context.Background(), testSession()))

	require.NoError(t, f.store.Clear(context.Background()))

	require.True(t, f.store.Current().IsZero())
	require.Empty(t, f.store.UserID())
	_, present := f.storage.Stored()
	require.False(t, present)
}

func TestSetPersistsBeforeNotify(t *testing.T) {
	f := setupStoreFixture(t)

	f.store.OnChange(func(s session.Session) {
		stored, present := f.storage.Stored()
		require.True(t, present)
		require.Equal(t, s, stored)
	})

	require.NoError(t, f.store.Set(context.Background(), testSession()))
}

func TestSetPersistFailureLeavesStateUntouched(t *testing.T) {
	f := setupStoreFixture(t)
	f.storage.SaveErr = errors.New("disk full")

	notified := false
	f.store.OnChange(func(session.Session) { notified = true })

	err := f.store.Set(context.Background(), testSession())

	require.Error(t, err)
	require.True(t, f.store.Current().IsZero())
	require.False(t, notified)
}

func TestListenersNotifiedInRegistrationOrder(t *testing.T) {
	f := setupStoreFixture(t)

	var order []string
	f.store.OnChange(func(s session.Session) {
		order = append(order, "first:"+s.UserID)
	})
	f.store.OnChange(func(s session.Session) {
		order = append(order, "second:"+s.UserID)
	})

	require.NoError(t, f.store.Set(context.Background(), testSession()))
	require.NoError(t, f.store.Clear(context.Background()))

	require.Equal(t, []string{"first:u1", "second:u1", "first:", "second:"}, order)
}

func TestUnsubscribeStopsDeliveryAndIsIdempotent(t *testing.T) {
	f := setupStoreFixture(t)

	calls := 0
	unsubscribe := f.store.OnChange(func(session.Session) { calls++ })

	require.NoError(t, f.store.Set(context.Background(), testSession()))
	require.Equal(t, 1, calls)

	unsubscribe()
	unsubscribe() // second call is a no-op

	require.NoError(t, f.store.Clear(context.Background()))
	require.Equal(t, 1, calls)
}

func TestUnsubscribeRemovesOnlyItsRegistration(t *testing.T) {
	f := setupStoreFixture(t)

	var calls []string
	fn := func(session.Session) { calls = append(calls, "kept") }
	unsubscribe := f.store.OnChange(func(session.Session) { calls = append(calls, "removed") })
	f.store.OnChange(fn)

	unsubscribe()
	require.NoError(t, f.store.Set(context.Background(), testSession()))

	require.Equal(t, []string{"kept"}, calls)
}

func TestPanickingListenerDoesNotStarveLaterListeners(t *testing.T) {
	f := setupStoreFixture(t)

	f.store.OnChange(func(session.Session) { panic("listener bug") })
	notified := false
	f.store.OnChange(func(session.Session) { notified = true })

	require.NoError(t, f.store.Set(context.Background(), testSession()))
	require.True(t, notified)
}

func TestLoadWithNothingStored(t *testing.T) {
	f := setupStoreFixture(t)

	sess, err := f.store.Load(context.Background())

	require.NoError(t, err)
	require.True(t, sess.IsZero())
	require.True(t, f.store.Current().IsZero())
}

func TestLoadRestoresPersistedSessionAndNotifies(t *testing.T) {
	f := setupStoreFixture(t)
	f.storage.Seed(testSession())

	var notified []session.Session
	f.store.OnChange(func(s session.Session) { notified = append(notified, s) })

	sess, err := f.store.Load(context.Background())

	require.NoError(t, err)
	require.Equal(t, testSession(), sess)
	require.Equal(t, testSession(), f.store.Current())
	require.Equal(t, []session.Session{testSession()}, notified)
}

func TestLoadFailureDegradesToLoggedOut(t *testing.T) {
	f := setupStoreFixture(t)
	f.storage.LoadErr = errors.New("corrupt entry")

	sess, err := f.store.Load(context.Background())

	require.NoError(t, err)
	require.True(t, sess.IsZero())
	require.True(t, f.store.Current().IsZero())
}

func TestTokenExpiry(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": testUserID,
		"exp": expiry.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	sess := session.Session{AccessToken: token}
	got, ok := sess.TokenExpiry()
	require.True(t, ok)
	require.True(t, got.Equal(expiry))
}

func TestTokenExpiryWithoutToken(t *testing.T) {
	_, ok := session.Session{}.TokenExpiry()
	require.False(t, ok)

	_, ok = session.Session{AccessToken: "not-a-jwt"}.TokenExpiry()
	require.False(t, ok)
}
