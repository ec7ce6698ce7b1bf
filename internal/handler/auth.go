package handler

import (
	"net/http"

	"github.com/amalbabu1997/music-controller-spotify/internal/logger"
	"github.com/amalbabu1997/music-controller-spotify/internal/spotify/token"

	"github.com/gin-gonic/gin"
)

// AuthURL hands the frontend the Spotify authorize URL. The random
// state is pinned in a short-lived cookie and checked on callback.
func (h *Handler) AuthURL(c *gin.Context) {
	state := generateState(c)
	c.JSON(http.StatusOK, gin.H{"url": h.oauth.AuthCodeURL(state)})
}

// Callback completes the authorization-code flow and stores the
// credentials under the caller's session identity. Every failure path
// sends the user back to the frontend instead of a bare error page.
func (h *Handler) Callback(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("spotify authorization denied", map[string]any{
			"error": errParam,
		})
		c.Redirect(http.StatusFound, h.frontendURL)
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("spotify callback missing code", nil)
		c.Redirect(http.StatusFound, h.frontendURL)
		return
	}

	if !validateState(c) {
		logger.Warn("spotify callback state mismatch", nil)
		c.Redirect(http.StatusFound, h.frontendURL)
		return
	}

	tok, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil || tok.AccessToken == "" || tok.Expiry.IsZero() {
		// A zero expiry means the response carried no expires_in;
		// storing such a record is worse than storing none.
		logger.Error("spotify token exchange failed", map[string]any{
			"exchange_error": err != nil,
		})
		c.Redirect(http.StatusFound, h.frontendURL)
		return
	}

	expiresAt := tok.Expiry // receipt time + expires_in, computed by oauth2

	rec := token.Record{
		SessionID:    sid,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresAt:    &expiresAt,
	}

	if err := h.credentials.Upsert(c.Request.Context(), rec); err != nil {
		logger.Error("failed to store spotify credentials", map[string]any{
			"error": err.Error(),
		})
		c.Redirect(http.StatusFound, h.frontendURL)
		return
	}

	logger.Info("spotify authenticated", map[string]any{
		"session": sid,
	})

	c.Redirect(http.StatusFound, h.frontendURL)
}

func (h *Handler) IsAuthenticated(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": h.authenticator.Authenticated(c.Request.Context(), sid),
	})
}
