package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amalbabu1997/music-controller-spotify/internal/logger"
)

// AccountsTokenURL is the Spotify token endpoint used for both the
// authorization-code exchange and refresh grants.
const AccountsTokenURL = "https://accounts.spotify.com/api/token"

var (
	ErrUnauthenticated = errors.New("token: session has no spotify credentials")
	ErrRefreshFailed   = errors.New("token: refresh failed")
)

// Refresher guarantees a valid access token before any remote call,
// refreshing proactively when the stored record is expired or corrupt.
type Refresher struct {
	store        Store
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	now          func() time.Time
}

func NewRefresher(store Store, clientID, clientSecret string) *Refresher {
	return &Refresher{
		store:        store,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     AccountsTokenURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		now:          time.Now,
	}
}

// ValidToken returns a non-expired access token for the session,
// refreshing first when needed. A missing expiry is treated as
// expired so a corrupt record gets repaired on the spot.
func (r *Refresher) ValidToken(ctx context.Context, sessionID string) (string, error) {
	rec, err := r.store.Get(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return "", ErrUnauthenticated
	}
	if err != nil {
		return "", err
	}

	if rec.ExpiresAt == nil || !rec.ExpiresAt.After(r.now()) {
		if err := r.Refresh(ctx, sessionID); err != nil {
			return "", err
		}

		rec, err = r.store.Get(ctx, sessionID)
		if err != nil {
			return "", err
		}
	}

	return rec.AccessToken, nil
}

// Refresh exchanges the stored refresh token for a new access token
// and overwrites the record. On any failure the prior record is left
// untouched. Concurrent refreshes for the same session are not
// deduplicated; the last writer wins.
func (r *Refresher) Refresh(ctx context.Context, sessionID string) error {
	rec, err := r.store.Get(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return ErrUnauthenticated
	}
	if err != nil {
		return err
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {rec.RefreshToken},
		"client_id":     {r.clientID},
		"client_secret": {r.clientSecret},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		r.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	var payload struct {
		AccessToken  string `json:"access_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    *int   `json:"expires_in"`
		RefreshToken string `json:"refresh_token"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("%w: invalid token response", ErrRefreshFailed)
	}

	if payload.AccessToken == "" || payload.ExpiresIn == nil {
		logger.Error("token refresh response incomplete", map[string]any{
			"status":           resp.StatusCode,
			"has_access_token": payload.AccessToken != "",
			"has_expires_in":   payload.ExpiresIn != nil,
		})
		return ErrRefreshFailed
	}

	// Spotify may omit the refresh token; keep the old one then.
	refreshToken := payload.RefreshToken
	if refreshToken == "" {
		refreshToken = rec.RefreshToken
	}

	expiresAt := r.now().Add(time.Duration(*payload.ExpiresIn) * time.Second)

	return r.store.Upsert(ctx, Record{
		SessionID:    sessionID,
		AccessToken:  payload.AccessToken,
		RefreshToken: refreshToken,
		TokenType:    payload.TokenType,
		ExpiresAt:    &expiresAt,
	})
}

// Authenticated reports whether the session holds usable credentials,
// attempting a repair refresh on an expired or corrupt record.
func (r *Refresher) Authenticated(ctx context.Context, sessionID string) bool {
	_, err := r.ValidToken(ctx, sessionID)
	return err == nil
}
