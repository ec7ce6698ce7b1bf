package party

import (
	"context"
	"errors"

	"github.com/amalbabu1997/music-controller-spotify/internal/logger"
	"github.com/amalbabu1997/music-controller-spotify/internal/spotify"
)

var (
	ErrNoSong     = errors.New("party: no song is currently playing")
	ErrNotAllowed = errors.New("party: not allowed to control playback")
)

// Votes is the slice of the vote tally the orchestrator needs.
type Votes interface {
	Cast(ctx context.Context, roomCode, songID, voter string) error
	Count(ctx context.Context, roomCode, songID string) (int, error)
	Reset(ctx context.Context, roomCode string) error
}

// Gateway is the remote playback surface, always invoked with the
// host's identity.
type Gateway interface {
	CurrentPlayback(ctx context.Context, sessionID string) (*spotify.Playback, error)
	Play(ctx context.Context, sessionID string) error
	Pause(ctx context.Context, sessionID string) error
	Skip(ctx context.Context, sessionID string) error
}

// SongStatus is the now-playing view for a room, vote state included.
type SongStatus struct {
	Track         spotify.Track
	ProgressMS    int
	IsPlaying     bool
	Votes         int
	VotesRequired int
}

type Orchestrator struct {
	rooms   Rooms
	votes   Votes
	gateway Gateway
}

func NewOrchestrator(rooms Rooms, votes Votes, gateway Gateway) *Orchestrator {
	return &Orchestrator{rooms: rooms, votes: votes, gateway: gateway}
}

// CurrentSong polls the host's playback. A song change is detected by
// comparing against the room's last observed track; the transition
// persists the new track and resets the room's votes exactly once.
func (o *Orchestrator) CurrentSong(ctx context.Context, code string) (*SongStatus, error) {
	rm, err := o.rooms.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	pb, err := o.gateway.CurrentPlayback(ctx, rm.Host)
	if errors.Is(err, spotify.ErrNoContent) {
		return nil, ErrNoSong
	}
	if err != nil {
		return nil, err
	}

	if rm.CurrentSong == nil || *rm.CurrentSong != pb.Track.ID {
		if err := o.rooms.SetCurrentSong(ctx, code, &pb.Track.ID); err != nil {
			return nil, err
		}
		if err := o.votes.Reset(ctx, code); err != nil {
			return nil, err
		}
	}

	count, err := o.votes.Count(ctx, code, pb.Track.ID)
	if err != nil {
		return nil, err
	}

	return &SongStatus{
		Track:         pb.Track,
		ProgressMS:    pb.ProgressMS,
		IsPlaying:     pb.IsPlaying,
		Votes:         count,
		VotesRequired: rm.VotesToSkip,
	}, nil
}

// VoteSkip casts one skip vote for the room's current song. The
// triggering vote counts toward the threshold in the same operation:
// when count + this vote reaches votes_to_skip, the skip fires, the
// current song is cleared and all votes reset.
//
// Two simultaneous votes can both pass the threshold check and skip
// twice; that race is inherited behavior and stays undeduplicated.
func (o *Orchestrator) VoteSkip(ctx context.Context, code, voter string) error {
	rm, err := o.rooms.FindByCode(ctx, code)
	if err != nil {
		return err
	}

	if rm.CurrentSong == nil {
		return ErrNoSong
	}
	songID := *rm.CurrentSong

	if err := o.votes.Cast(ctx, code, songID, voter); err != nil {
		return err
	}

	count, err := o.votes.Count(ctx, code, songID)
	if err != nil {
		return err
	}

	if count >= rm.VotesToSkip {
		logger.Info("vote threshold reached, skipping", map[string]any{
			"room":  code,
			"song":  songID,
			"votes": count,
		})

		// The remote skip is best effort; local state moves on either way.
		if err := o.gateway.Skip(ctx, rm.Host); err != nil {
			logger.Warn("remote skip failed", map[string]any{
				"room":  code,
				"error": err.Error(),
			})
		}

		if err := o.rooms.SetCurrentSong(ctx, code, nil); err != nil {
			return err
		}
		if err := o.votes.Reset(ctx, code); err != nil {
			return err
		}
	}

	return nil
}

// Play resumes playback for the room. Permitted for the host or, when
// guest_can_pause is set, any guest; the remote call always
// authenticates as the host.
func (o *Orchestrator) Play(ctx context.Context, code, requester string) error {
	rm, err := o.rooms.FindByCode(ctx, code)
	if err != nil {
		return err
	}

	if requester != rm.Host && !rm.GuestCanPause {
		return ErrNotAllowed
	}

	return o.gateway.Play(ctx, rm.Host)
}

// Pause pauses playback for the room, gated like Play.
func (o *Orchestrator) Pause(ctx context.Context, code, requester string) error {
	rm, err := o.rooms.FindByCode(ctx, code)
	if err != nil {
		return err
	}

	if requester != rm.Host && !rm.GuestCanPause {
		return ErrNotAllowed
	}

	return o.gateway.Pause(ctx, rm.Host)
}
