// Package spotify talks to the Spotify Web API on behalf of a room
// host, normalizing remote failures into a small internal error set.
//
// Response shapes follow https://developer.spotify.com/documentation/web-api/reference/
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amalbabu1997/music-controller-spotify/internal/logger"

	"golang.org/x/time/rate"
)

const (
	// AccountsAuthURL is the Spotify authorization endpoint for the
	// authorization-code flow.
	AccountsAuthURL = "https://accounts.spotify.com/authorize"

	// DefaultBaseURL is the Web API prefix for the current user's
	// player; every gateway endpoint is relative to it.
	DefaultBaseURL = "https://api.spotify.com/v1/me/"
)

var (
	// ErrNoContent marks a 204 (or an empty playback payload): nothing
	// is currently playing. Callers treat it as a state, not a failure.
	ErrNoContent = errors.New("spotify: no content")

	// ErrUnauthorized marks a 401. The gateway fires one refresh for
	// the benefit of the next call; the current call is not retried.
	ErrUnauthorized = errors.New("spotify: unauthorized")

	ErrDecode = errors.New("spotify: invalid JSON response")
)

// RemoteError is any other non-200 answer, with the remote status and
// body kept for diagnostics. Timeouts surface as a RemoteError with
// code 0.
type RemoteError struct {
	Code int
	Body string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("spotify: remote error %d: %s", e.Code, e.Body)
}

// TokenSource yields host access tokens. Implemented by token.Refresher.
type TokenSource interface {
	ValidToken(ctx context.Context, sessionID string) (string, error)
	Refresh(ctx context.Context, sessionID string) error
}

type Gateway struct {
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

func NewGateway(tokens TokenSource) *Gateway {
	return &Gateway{
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
		baseURL:    DefaultBaseURL,
	}
}

func (g *Gateway) call(ctx context.Context, sessionID, method, endpoint string) (json.RawMessage, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	tok, err := g.tokens.ValidToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Code: resp.StatusCode, Body: err.Error()}
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, ErrNoContent

	case resp.StatusCode == http.StatusUnauthorized:
		// The token likely expired mid-flight. Refresh once so the
		// next call succeeds; this call surfaces the 401 as-is.
		if err := g.tokens.Refresh(ctx, sessionID); err != nil {
			logger.Warn("refresh after 401 failed", map[string]any{
				"error": err.Error(),
			})
		}
		return nil, ErrUnauthorized

	case resp.StatusCode != http.StatusOK:
		return nil, &RemoteError{Code: resp.StatusCode, Body: string(body)}
	}

	if !json.Valid(body) {
		return nil, ErrDecode
	}

	return json.RawMessage(body), nil
}

// CurrentPlayback fetches the host's currently playing track.
// ErrNoContent means no active playback.
func (g *Gateway) CurrentPlayback(ctx context.Context, sessionID string) (*Playback, error) {
	raw, err := g.call(ctx, sessionID, http.MethodGet, "player/currently-playing")
	if err != nil {
		return nil, err
	}
	return parsePlayback(raw)
}

// Play resumes the host's playback.
func (g *Gateway) Play(ctx context.Context, sessionID string) error {
	return g.command(ctx, sessionID, http.MethodPut, "player/play")
}

// Pause pauses the host's playback.
func (g *Gateway) Pause(ctx context.Context, sessionID string) error {
	return g.command(ctx, sessionID, http.MethodPut, "player/pause")
}

// Skip advances the host's playback to the next track.
func (g *Gateway) Skip(ctx context.Context, sessionID string) error {
	return g.command(ctx, sessionID, http.MethodPost, "player/next")
}

// command issues a playback command. Spotify answers these with 204,
// so ErrNoContent is the success case.
func (g *Gateway) command(ctx context.Context, sessionID, method, endpoint string) error {
	_, err := g.call(ctx, sessionID, method, endpoint)
	if errors.Is(err, ErrNoContent) {
		return nil
	}
	return err
}

// IsPremium reports whether the session's account is premium. Any
// failure counts as not premium (fail-closed).
func (g *Gateway) IsPremium(ctx context.Context, sessionID string) bool {
	raw, err := g.call(ctx, sessionID, http.MethodGet, "")
	if err != nil {
		return false
	}

	var payload struct {
		Product string `json:"product"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false
	}

	return payload.Product == "premium"
}
