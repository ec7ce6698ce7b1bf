package token

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	mu      sync.Mutex
	records map[string]Record
	upserts int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]Record)}
}

func (m *memStore) Get(_ context.Context, sessionID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := rec
	return &cp, nil
}

func (m *memStore) Upsert(_ context.Context, rec Record) error {
	if rec.ExpiresAt == nil || rec.ExpiresAt.IsZero() {
		return ErrMissingExpiry
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.SessionID] = rec
	m.upserts++
	return nil
}

func (m *memStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, sessionID)
	return nil
}

func newTestRefresher(t *testing.T, store Store, tokenResponse string, status int) (*Refresher, *int) {
	t.Helper()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q, want refresh_token", got)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(tokenResponse))
	}))
	t.Cleanup(srv.Close)

	r := NewRefresher(store, "client-id", "client-secret")
	r.tokenURL = srv.URL
	return r, &calls
}

func expiresIn(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

func TestValidTokenNoRecord(t *testing.T) {
	r, calls := newTestRefresher(t, newMemStore(), `{}`, http.StatusOK)

	_, err := r.ValidToken(context.Background(), "nobody")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("ValidToken() error = %v, want ErrUnauthenticated", err)
	}
	if *calls != 0 {
		t.Fatalf("token endpoint called %d times, want 0", *calls)
	}
}

func TestValidTokenFreshRecord(t *testing.T) {
	store := newMemStore()
	store.records["host"] = Record{
		SessionID:    "host",
		AccessToken:  "fresh-token",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		ExpiresAt:    expiresIn(time.Hour),
	}

	r, calls := newTestRefresher(t, store, `{}`, http.StatusOK)

	tok, err := r.ValidToken(context.Background(), "host")
	if err != nil {
		t.Fatalf("ValidToken() error = %v", err)
	}
	if tok != "fresh-token" {
		t.Fatalf("ValidToken() = %q, want fresh-token", tok)
	}
	if *calls != 0 {
		t.Fatalf("token endpoint called %d times, want 0", *calls)
	}
}

func TestValidTokenExpiredTriggersOneRefresh(t *testing.T) {
	store := newMemStore()
	store.records["host"] = Record{
		SessionID:    "host",
		AccessToken:  "stale-token",
		RefreshToken: "old-refresh",
		TokenType:    "Bearer",
		ExpiresAt:    expiresIn(-time.Minute),
	}

	r, calls := newTestRefresher(t, store,
		`{"access_token":"new-token","token_type":"Bearer","expires_in":3600,"refresh_token":"new-refresh"}`,
		http.StatusOK)

	tok, err := r.ValidToken(context.Background(), "host")
	if err != nil {
		t.Fatalf("ValidToken() error = %v", err)
	}
	if tok != "new-token" {
		t.Fatalf("ValidToken() = %q, want new-token", tok)
	}
	if *calls != 1 {
		t.Fatalf("token endpoint called %d times, want 1", *calls)
	}

	rec := store.records["host"]
	if rec.RefreshToken != "new-refresh" {
		t.Errorf("refresh token = %q, want new-refresh", rec.RefreshToken)
	}
	if rec.ExpiresAt == nil || !rec.ExpiresAt.After(time.Now()) {
		t.Errorf("expires_at not advanced: %v", rec.ExpiresAt)
	}
}

func TestValidTokenNilExpiryForcesRefresh(t *testing.T) {
	store := newMemStore()
	store.records["host"] = Record{
		SessionID:    "host",
		AccessToken:  "corrupt",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		ExpiresAt:    nil, // corrupt record
	}

	r, calls := newTestRefresher(t, store,
		`{"access_token":"repaired","token_type":"Bearer","expires_in":3600}`,
		http.StatusOK)

	tok, err := r.ValidToken(context.Background(), "host")
	if err != nil {
		t.Fatalf("ValidToken() error = %v", err)
	}
	if tok != "repaired" {
		t.Fatalf("ValidToken() = %q, want repaired", tok)
	}
	if *calls != 1 {
		t.Fatalf("token endpoint called %d times, want 1", *calls)
	}
}

func TestRefreshKeepsOldRefreshToken(t *testing.T) {
	store := newMemStore()
	store.records["host"] = Record{
		SessionID:    "host",
		AccessToken:  "stale",
		RefreshToken: "keep-me",
		TokenType:    "Bearer",
		ExpiresAt:    expiresIn(-time.Minute),
	}

	r, _ := newTestRefresher(t, store,
		`{"access_token":"new-token","token_type":"Bearer","expires_in":3600}`,
		http.StatusOK)

	if err := r.Refresh(context.Background(), "host"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if got := store.records["host"].RefreshToken; got != "keep-me" {
		t.Fatalf("refresh token = %q, want keep-me", got)
	}
}

func TestRefreshMissingExpiresInLeavesRecordUntouched(t *testing.T) {
	store := newMemStore()
	before := Record{
		SessionID:    "host",
		AccessToken:  "stale",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		ExpiresAt:    expiresIn(-time.Minute),
	}
	store.records["host"] = before

	r, _ := newTestRefresher(t, store,
		`{"access_token":"new-token","token_type":"Bearer"}`,
		http.StatusOK)

	_, err := r.ValidToken(context.Background(), "host")
	if !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("ValidToken() error = %v, want ErrRefreshFailed", err)
	}

	if store.upserts != 0 {
		t.Fatalf("store written %d times after failed refresh, want 0", store.upserts)
	}
	if got := store.records["host"].AccessToken; got != before.AccessToken {
		t.Fatalf("access token = %q, record changed by failed refresh", got)
	}
}

func TestRefreshMissingAccessTokenFails(t *testing.T) {
	store := newMemStore()
	store.records["host"] = Record{
		SessionID:    "host",
		AccessToken:  "stale",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		ExpiresAt:    expiresIn(-time.Minute),
	}

	r, _ := newTestRefresher(t, store, `{"expires_in":3600}`, http.StatusOK)

	if err := r.Refresh(context.Background(), "host"); !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("Refresh() error = %v, want ErrRefreshFailed", err)
	}
}

func TestAuthenticated(t *testing.T) {
	store := newMemStore()
	store.records["host"] = Record{
		SessionID:    "host",
		AccessToken:  "fresh",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		ExpiresAt:    expiresIn(time.Hour),
	}

	r, _ := newTestRefresher(t, store, `{}`, http.StatusOK)

	if !r.Authenticated(context.Background(), "host") {
		t.Error("Authenticated() = false for fresh record")
	}
	if r.Authenticated(context.Background(), "stranger") {
		t.Error("Authenticated() = true for unknown session")
	}
}
