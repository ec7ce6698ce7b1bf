package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/amalbabu1997/music-controller-spotify/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionTTL = 30 * 24 * time.Hour

// unexported, collision-proof context key
type sessionIDContextKeyType struct{}

var sessionIDKey = sessionIDContextKeyType{}

// SessionIDFromContext extracts the caller's session identity from context.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}

// ContextWithSessionID attaches a session identity to the context.
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

type SessionMiddleware struct {
	Store session.Store
}

func NewSessionMiddleware(store session.Store) *SessionMiddleware {
	return &SessionMiddleware{Store: store}
}

// EnsureSession resolves the session cookie, minting a fresh anonymous
// session when the request carries none (or an expired one). Every
// request downstream can rely on a session identity being present.
func (m *SessionMiddleware) EnsureSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *session.Session

		// 1. Try the existing cookie
		if cookie, err := c.Request.Cookie(session.CookieName); err == nil && cookie.Value != "" {
			s, err := m.Store.Get(c.Request.Context(), cookie.Value)
			if err == nil && s != nil && time.Now().Before(s.ExpiresAt) {
				sess = s
			}
		}

		// 2. Mint a new identity on demand
		if sess == nil {
			id, err := session.GenerateID()
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session error"})
				return
			}

			now := time.Now()
			s := session.Session{
				SessionID: id,
				CreatedAt: now,
				ExpiresAt: now.Add(sessionTTL),
			}

			if err := m.Store.Create(c.Request.Context(), s); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session error"})
				return
			}

			session.SetCookie(c.Writer, id, s.ExpiresAt, session.CookieOptions{
				Secure:   true,
				SameSite: http.SameSiteLaxMode,
			})

			sess = &s
		}

		// 3. Attach session identity to context
		ctx := ContextWithSessionID(c.Request.Context(), sess.SessionID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
