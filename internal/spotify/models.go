package spotify

import "encoding/json"

// Track is the subset of a Spotify track the rooms care about.
type Track struct {
	ID            string
	Title         string
	Artists       []string
	AlbumImageURL string
	DurationMS    int
}

// Playback is the host's current playback state.
type Playback struct {
	Track      Track
	ProgressMS int
	IsPlaying  bool
}

// parsePlayback builds a Playback from a currently-playing payload.
// The item and its identifying fields must be present; an empty item
// means nothing is playing and maps to ErrNoContent.
func parsePlayback(raw json.RawMessage) (*Playback, error) {
	var payload struct {
		ProgressMS int  `json:"progress_ms"`
		IsPlaying  bool `json:"is_playing"`
		Item       *struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			DurationMS int    `json:"duration_ms"`
			Artists    []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Images []struct {
					URL string `json:"url"`
				} `json:"images"`
			} `json:"album"`
		} `json:"item"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrDecode
	}

	if payload.Item == nil || payload.Item.ID == "" || payload.Item.Name == "" {
		return nil, ErrNoContent
	}

	artists := make([]string, 0, len(payload.Item.Artists))
	for _, a := range payload.Item.Artists {
		artists = append(artists, a.Name)
	}

	var albumImage string
	if len(payload.Item.Album.Images) > 0 {
		albumImage = payload.Item.Album.Images[0].URL
	}

	return &Playback{
		Track: Track{
			ID:            payload.Item.ID,
			Title:         payload.Item.Name,
			Artists:       artists,
			AlbumImageURL: albumImage,
			DurationMS:    payload.Item.DurationMS,
		},
		ProgressMS: payload.ProgressMS,
		IsPlaying:  payload.IsPlaying,
	}, nil
}
