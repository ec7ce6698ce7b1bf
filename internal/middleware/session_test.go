package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amalbabu1997/music-controller-spotify/internal/session"

	"github.com/gin-gonic/gin"
)

type memStore struct {
	sessions map[string]session.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]session.Session)}
}

func (m *memStore) Create(_ context.Context, s session.Session) error {
	m.sessions[s.SessionID] = s
	return nil
}

func (m *memStore) Get(_ context.Context, sessionID string) (*session.Session, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	cp := s
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, s session.Session) error {
	m.sessions[s.SessionID] = s
	return nil
}

func (m *memStore) Delete(_ context.Context, sessionID string) error {
	delete(m.sessions, sessionID)
	return nil
}

func newTestRouter(store session.Store, captured *string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(NewSessionMiddleware(store).EnsureSession())
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := SessionIDFromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		*captured = id
		c.Status(http.StatusOK)
	})
	return r
}

func TestEnsureSessionMintsIdentity(t *testing.T) {
	store := newMemStore()
	var captured string
	router := newTestRouter(store, &captured)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if captured == "" {
		t.Fatal("no session identity attached to context")
	}
	if _, ok := store.sessions[captured]; !ok {
		t.Fatal("minted session not persisted")
	}

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.Value == captured {
			found = true
		}
	}
	if !found {
		t.Fatal("session cookie not issued")
	}
}

func TestEnsureSessionReusesValidCookie(t *testing.T) {
	store := newMemStore()
	store.sessions["existing"] = session.Session{
		SessionID: "existing",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	var captured string
	router := newTestRouter(store, &captured)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "existing"})
	router.ServeHTTP(w, req)

	if captured != "existing" {
		t.Fatalf("session = %q, want existing", captured)
	}
	if len(store.sessions) != 1 {
		t.Fatalf("sessions = %d, a fresh one was minted for a valid cookie", len(store.sessions))
	}
}

func TestEnsureSessionReplacesExpiredSession(t *testing.T) {
	store := newMemStore()
	store.sessions["stale"] = session.Session{
		SessionID: "stale",
		CreatedAt: time.Now().Add(-48 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	var captured string
	router := newTestRouter(store, &captured)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "stale"})
	router.ServeHTTP(w, req)

	if captured == "" || captured == "stale" {
		t.Fatalf("session = %q, want a freshly minted identity", captured)
	}
}
