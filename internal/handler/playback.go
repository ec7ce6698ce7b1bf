package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/amalbabu1997/music-controller-spotify/internal/party"
	"github.com/amalbabu1997/music-controller-spotify/internal/room"
	"github.com/amalbabu1997/music-controller-spotify/internal/spotify"
	"github.com/amalbabu1997/music-controller-spotify/internal/spotify/token"
	"github.com/amalbabu1997/music-controller-spotify/internal/vote"

	"github.com/gin-gonic/gin"
)

// boundRoom resolves the caller's room binding, answering 400 when the
// session is not in a room.
func (h *Handler) boundRoom(c *gin.Context) (sid, code string, ok bool) {
	sid, ok = sessionID(c)
	if !ok {
		return "", "", false
	}

	code, err := h.binder.CurrentRoom(c.Request.Context(), sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve room"})
		return "", "", false
	}
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user is not in a room"})
		return "", "", false
	}

	return sid, code, true
}

// writePlaybackError maps the party/gateway error set onto response
// codes. Credential problems are the host's to fix, so guests see 403
// rather than a crash; remote failures carry the remote detail.
func writePlaybackError(c *gin.Context, err error) {
	var remoteErr *spotify.RemoteError

	switch {
	case errors.Is(err, room.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case errors.Is(err, party.ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to control playback"})
	case errors.Is(err, token.ErrUnauthenticated), errors.Is(err, token.ErrRefreshFailed):
		c.JSON(http.StatusForbidden, gin.H{"error": "host spotify credentials unavailable"})
	case errors.Is(err, spotify.ErrUnauthorized):
		c.JSON(http.StatusBadGateway, gin.H{"error": "spotify rejected the host credentials"})
	case errors.Is(err, spotify.ErrDecode):
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid response from spotify"})
	case errors.As(err, &remoteErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":         "spotify request failed",
			"remote_status": remoteErr.Code,
			"remote_body":   remoteErr.Body,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "playback operation failed"})
	}
}

func (h *Handler) CurrentSong(c *gin.Context) {
	_, code, ok := h.boundRoom(c)
	if !ok {
		return
	}

	status, err := h.player.CurrentSong(c.Request.Context(), code)
	if errors.Is(err, party.ErrNoSong) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		writePlaybackError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"song_id":        status.Track.ID,
		"title":          status.Track.Title,
		"artist":         strings.Join(status.Track.Artists, ", "),
		"album_image":    status.Track.AlbumImageURL,
		"duration_ms":    status.Track.DurationMS,
		"progress_ms":    status.ProgressMS,
		"is_playing":     status.IsPlaying,
		"votes":          status.Votes,
		"votes_required": status.VotesRequired,
	})
}

func (h *Handler) Play(c *gin.Context) {
	sid, code, ok := h.boundRoom(c)
	if !ok {
		return
	}

	if err := h.player.Play(c.Request.Context(), code, sid); err != nil {
		writePlaybackError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Pause(c *gin.Context) {
	sid, code, ok := h.boundRoom(c)
	if !ok {
		return
	}

	if err := h.player.Pause(c.Request.Context(), code, sid); err != nil {
		writePlaybackError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) SkipSong(c *gin.Context) {
	sid, code, ok := h.boundRoom(c)
	if !ok {
		return
	}

	err := h.player.VoteSkip(c.Request.Context(), code, sid)
	switch {
	case errors.Is(err, party.ErrNoSong):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no song is currently playing"})
	case errors.Is(err, vote.ErrAlreadyVoted):
		c.JSON(http.StatusForbidden, gin.H{"error": "you have already voted"})
	case err != nil:
		writePlaybackError(c, err)
	default:
		c.Status(http.StatusNoContent)
	}
}
