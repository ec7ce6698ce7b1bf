package handler

import (
	"context"

	"github.com/amalbabu1997/music-controller-spotify/internal/party"
	"github.com/amalbabu1997/music-controller-spotify/internal/room"
	"github.com/amalbabu1997/music-controller-spotify/internal/spotify/token"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

// Rooms is the registry surface the HTTP layer needs.
type Rooms interface {
	CreateOrUpdate(ctx context.Context, host string, guestCanPause bool, votesToSkip int) (*room.Room, error)
	FindByCode(ctx context.Context, code string) (*room.Room, error)
	List(ctx context.Context) ([]room.Room, error)
}

// Binder binds sessions to rooms.
type Binder interface {
	Join(ctx context.Context, sessionID, code string) error
	Leave(ctx context.Context, sessionID string) error
	CurrentRoom(ctx context.Context, sessionID string) (string, error)
}

// Player drives room playback and skip voting.
type Player interface {
	CurrentSong(ctx context.Context, code string) (*party.SongStatus, error)
	VoteSkip(ctx context.Context, code, voter string) error
	Play(ctx context.Context, code, requester string) error
	Pause(ctx context.Context, code, requester string) error
}

// Credentials stores Spotify credential records.
type Credentials interface {
	Upsert(ctx context.Context, rec token.Record) error
}

// Authenticator answers whether a session holds usable credentials.
type Authenticator interface {
	Authenticated(ctx context.Context, sessionID string) bool
}

type Handler struct {
	rooms         Rooms
	binder        Binder
	player        Player
	credentials   Credentials
	authenticator Authenticator
	oauth         *oauth2.Config
	frontendURL   string
}

func NewHandler(
	rooms Rooms,
	binder Binder,
	player Player,
	credentials Credentials,
	authenticator Authenticator,
	oauth *oauth2.Config,
	frontendURL string,
) *Handler {
	return &Handler{
		rooms:         rooms,
		binder:        binder,
		player:        player,
		credentials:   credentials,
		authenticator: authenticator,
		oauth:         oauth,
		frontendURL:   frontendURL,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/rooms", h.ListRooms)
	api.GET("/room", h.GetRoom)
	api.POST("/join-room", h.JoinRoom)
	api.POST("/create-room", h.CreateRoom)
	api.GET("/user-in-room", h.UserInRoom)
	api.POST("/leave-room", h.LeaveRoom)
	api.PATCH("/update-room", h.UpdateRoom)

	sp := r.Group("/spotify")
	sp.GET("/get-auth-url", h.AuthURL)
	sp.GET("/redirect", h.Callback)
	sp.GET("/is_authenticated", h.IsAuthenticated)
	sp.GET("/current-song", h.CurrentSong)
	sp.PUT("/play", h.Play)
	sp.PUT("/pause", h.Pause)
	sp.POST("/skip-song", h.SkipSong)
}
