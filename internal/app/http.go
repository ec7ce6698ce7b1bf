package app

import (
	"context"

	"github.com/amalbabu1997/music-controller-spotify/internal/config"
	"github.com/amalbabu1997/music-controller-spotify/internal/handler"
	"github.com/amalbabu1997/music-controller-spotify/internal/middleware"
	"github.com/amalbabu1997/music-controller-spotify/internal/party"
	"github.com/amalbabu1997/music-controller-spotify/internal/room"
	"github.com/amalbabu1997/music-controller-spotify/internal/session"
	"github.com/amalbabu1997/music-controller-spotify/internal/spotify"
	"github.com/amalbabu1997/music-controller-spotify/internal/spotify/token"
	"github.com/amalbabu1997/music-controller-spotify/internal/vote"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

// OAuth scopes needed to read and control the host's playback.
var spotifyScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
}

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessionStore := session.NewRedisStore(infra.Redis.Client)
	registry := room.NewRegistry(infra.DB)
	tally := vote.NewTally(infra.DB)

	tokenStore := token.NewPGStore(infra.DB)
	refresher := token.NewRefresher(tokenStore, cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	gateway := spotify.NewGateway(refresher)

	binder := party.NewBinder(sessionStore, registry)
	orchestrator := party.NewOrchestrator(registry, tally, gateway)

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
		RedirectURL:  cfg.SpotifyRedirectURL,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotify.AccountsAuthURL,
			TokenURL: token.AccountsTokenURL,
		},
	}

	apiHandler := handler.NewHandler(
		registry,
		binder,
		orchestrator,
		tokenStore,
		refresher,
		oauthCfg,
		cfg.FrontendURL,
	)

	sessionMiddleware := middleware.NewSessionMiddleware(sessionStore)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Every room/spotify route relies on a session identity existing.
	router.Use(sessionMiddleware.EnsureSession())

	apiHandler.RegisterRoutes(router)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
