package handler

import (
	"errors"
	"net/http"

	"github.com/amalbabu1997/music-controller-spotify/internal/middleware"
	"github.com/amalbabu1997/music-controller-spotify/internal/room"

	"github.com/gin-gonic/gin"
)

func sessionID(c *gin.Context) (string, bool) {
	id, ok := middleware.SessionIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session missing"})
	}
	return id, ok
}

func roomJSON(rm *room.Room) gin.H {
	return gin.H{
		"code":            rm.Code,
		"guest_can_pause": rm.GuestCanPause,
		"votes_to_skip":   rm.VotesToSkip,
		"current_song":    rm.CurrentSong,
		"created_at":      rm.CreatedAt,
	}
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rooms"})
		return
	}

	out := make([]gin.H, 0, len(rooms))
	for i := range rooms {
		out = append(out, roomJSON(&rooms[i]))
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetRoom(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code parameter not found"})
		return
	}

	rm, err := h.rooms.FindByCode(c.Request.Context(), code)
	if errors.Is(err, room.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid room code"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch room"})
		return
	}

	data := roomJSON(rm)
	data["is_host"] = rm.Host == sid

	c.JSON(http.StatusOK, data)
}

type createRoomRequest struct {
	GuestCanPause *bool `json:"guest_can_pause"`
	VotesToSkip   int   `json:"votes_to_skip"`
}

func (h *Handler) CreateRoom(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.GuestCanPause == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	rm, err := h.rooms.CreateOrUpdate(
		c.Request.Context(),
		sid,
		*req.GuestCanPause,
		req.VotesToSkip,
	)
	if errors.Is(err, room.ErrInvalidVotesToSkip) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "votes_to_skip must be at least 1"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}

	// The host is in their own party.
	if err := h.binder.Join(c.Request.Context(), sid, rm.Code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join room"})
		return
	}

	c.JSON(http.StatusCreated, roomJSON(rm))
}

type joinRoomRequest struct {
	Code string `json:"code"`
}

func (h *Handler) JoinRoom(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request, code key missing"})
		return
	}

	err := h.binder.Join(c.Request.Context(), sid, req.Code)
	if errors.Is(err, room.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room code"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "room joined"})
}

func (h *Handler) UserInRoom(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	code, err := h.binder.CurrentRoom(c.Request.Context(), sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve room"})
		return
	}

	if code == "" {
		c.JSON(http.StatusOK, gin.H{"code": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}

func (h *Handler) LeaveRoom(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.binder.Leave(c.Request.Context(), sid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to leave room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

type updateRoomRequest struct {
	Code          string `json:"code"`
	GuestCanPause *bool  `json:"guest_can_pause"`
	VotesToSkip   int    `json:"votes_to_skip"`
}

func (h *Handler) UpdateRoom(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" || req.GuestCanPause == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	rm, err := h.rooms.FindByCode(c.Request.Context(), req.Code)
	if errors.Is(err, room.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch room"})
		return
	}

	if rm.Host != sid {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not the host of this room"})
		return
	}

	rm, err = h.rooms.CreateOrUpdate(
		c.Request.Context(),
		sid,
		*req.GuestCanPause,
		req.VotesToSkip,
	)
	if errors.Is(err, room.ErrInvalidVotesToSkip) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "votes_to_skip must be at least 1"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update room"})
		return
	}

	c.JSON(http.StatusOK, roomJSON(rm))
}
