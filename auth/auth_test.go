package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"apotek/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *time.Time) {
	t.Helper()
	db, err := loader.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)
	svc := NewService(db, "test-secret", time.Hour, nil)
	svc.SetClock(func() time.Time { return now })
	return svc, &now
}

func TestSignUpValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	u, err := svc.SignUp(ctx, " Apoteker@Example.com ", "rahasia1", "Bu Sari")
	require.NoError(t, err)
	assert.Equal(t, "apoteker@example.com", u.Email)
	assert.NotEqual(t, "rahasia1", u.PasswordHash)

	_, err = svc.SignUp(ctx, "apoteker@example.com", "another1", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = svc.SignUp(ctx, "not-an-email", "rahasia1", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = svc.SignUp(ctx, "x@example.com", "123", "")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestSignInSessionSignOut(t *testing.T) {
	ctx := context.Background()
	svc, now := newService(t)
	_, err := svc.SignUp(ctx, "apoteker@example.com", "rahasia1", "Bu Sari")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "apoteker@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "nobody@example.com", "rahasia1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := svc.SignIn(ctx, "APOTEKER@example.com", "rahasia1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, now.Add(time.Hour), sess.ExpiresAt)

	got, err := svc.Session(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "Bu Sari", got.User.DisplayName)

	for _, bad := range []string{"", "garbage", sess.Token + "x"} {
		got, err := svc.Session(ctx, bad)
		require.NoError(t, err)
		assert.Nil(t, got, "token %q", bad)
	}

	require.NoError(t, svc.SignOut(ctx, sess.Token))
	got, err = svc.Session(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, got, "revoked session")
	require.NoError(t, svc.SignOut(ctx, sess.Token), "second sign-out is harmless")
}

func TestSessionExpires(t *testing.T) {
	ctx := context.Background()
	svc, now := newService(t)
	_, err := svc.SignUp(ctx, "apoteker@example.com", "rahasia1", "")
	require.NoError(t, err)
	sess, err := svc.SignIn(ctx, "apoteker@example.com", "rahasia1")
	require.NoError(t, err)

	*now = now.Add(2 * time.Hour)
	got, err := svc.Session(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.SignUp(ctx, "apoteker@example.com", "rahasia1", "")
	require.NoError(t, err)

	events, unsubscribe := svc.Subscribe()
	slow, unsubscribeSlow := svc.Subscribe()
	defer unsubscribeSlow()

	sess, err := svc.SignIn(ctx, "apoteker@example.com", "rahasia1")
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx, sess.Token))

	ev := <-events
	assert.Equal(t, SignedIn, ev.Kind)
	assert.Equal(t, "apoteker@example.com", ev.Email)
	ev = <-events
	assert.Equal(t, SignedOut, ev.Kind)

	unsubscribe()
	unsubscribe()
	_, open := <-events
	assert.False(t, open)
	assert.Equal(t, 1, svc.subscriberCount())

	// A subscriber that never reads must not stall sign-ins.
	for i := 0; i < subscriberBuffer+5; i++ {
		_, err := svc.SignIn(ctx, "apoteker@example.com", "rahasia1")
		require.NoError(t, err)
	}
	assert.Len(t, slow, subscriberBuffer)
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.SignUp(ctx, "apoteker@example.com", "rahasia1", "")
	require.NoError(t, err)
	sess, err := svc.SignIn(ctx, "apoteker@example.com", "rahasia1")
	require.NoError(t, err)

	var seen *Session
	h := Middleware(svc, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name        string
		path        string
		setup       func(r *http.Request)
		status      int
		wantSession bool
	}{
		{"protected without token", "/api/medicines", nil, http.StatusUnauthorized, false},
		{"bearer token", "/api/medicines", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+sess.Token) }, http.StatusNoContent, true},
		{"cookie", "/api/orders", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: sess.Token}) }, http.StatusNoContent, true},
		{"auth routes are public", "/api/auth/signin", nil, http.StatusNoContent, false},
		{"pricing preview is public", "/api/pricing/preview", nil, http.StatusNoContent, false},
		{"metrics are public", "/metrics", nil, http.StatusNoContent, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.setup != nil {
				tt.setup(req)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.wantSession {
				require.NotNil(t, seen)
				assert.Equal(t, sess.ID, seen.ID)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestHandlers(t *testing.T) {
	svc, _ := newService(t)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/signup", SignUpHandler(svc))
	mux.HandleFunc("POST /api/auth/signin", SignInHandler(svc))
	mux.HandleFunc("POST /api/auth/signout", SignOutHandler(svc))
	mux.HandleFunc("GET /api/auth/session", SessionHandler(svc))

	post := func(path, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	rec := post("/api/auth/signup", `{"email":"apoteker@example.com","password":"rahasia1","displayName":"Bu Sari"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotEmpty(t, rec.Result().Cookies())

	rec = post("/api/auth/signup", `{"email":"apoteker@example.com","password":"rahasia1"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = post("/api/auth/signin", `{"email":"apoteker@example.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post("/api/auth/signin", `{"email":"apoteker@example.com","password":"rahasia1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Result().Cookies()[0].Value

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "Bu Sari")

	rec = post("/api/auth/signout", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestEventsHandler(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.SignUp(ctx, "apoteker@example.com", "rahasia1", "")
	require.NoError(t, err)

	reqCtx, cancel := context.WithCancel(ctx)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/events", nil).WithContext(reqCtx)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		EventsHandler(svc).ServeHTTP(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return svc.subscriberCount() == 1 }, time.Second, 5*time.Millisecond)
	_, err = svc.SignIn(ctx, "apoteker@example.com", "rahasia1")
	require.NoError(t, err)
	// Let the handler drain the event before the stream is closed.
	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		for _, ch := range svc.subs {
			return len(ch) == 0
		}
		return false
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event: signed_in")
	assert.Equal(t, 0, svc.subscriberCount())
}
