package soundcloud

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shamsmusic/scpulse/data"
)

type userJSON struct {
	Username       string `json:"username"`
	FollowersCount *int64 `json:"followers_count"`
	TrackCount     *int64 `json:"track_count"`
}

type trackJSON struct {
	URN          string `json:"urn"`
	Title        string `json:"title"`
	PermalinkURL string `json:"permalink_url"`
	ArtworkURL   string `json:"artwork_url"`

	PlaybackCount    *int64 `json:"playback_count"`
	FavoritingsCount *int64 `json:"favoritings_count"`
	CommentCount     *int64 `json:"comment_count"`
	RepostsCount     *int64 `json:"reposts_count"`

	Access     string `json:"access"`
	Streamable bool   `json:"streamable"`

	CreatedAt    string `json:"created_at"`
	ReleaseYear  *int   `json:"release_year"`
	ReleaseMonth *int   `json:"release_month"`
	ReleaseDay   *int   `json:"release_day"`
}

func (t trackJSON) track() data.Track {
	return data.Track{
		URN:           t.URN,
		Title:         t.Title,
		PermalinkURL:  t.PermalinkURL,
		ArtworkURL:    t.ArtworkURL,
		PlaybackCount: t.PlaybackCount,
		LikesCount:    t.FavoritingsCount,
		CommentCount:  t.CommentCount,
		RepostsCount:  t.RepostsCount,
		Access:        t.Access,
		Streamable:    t.Streamable,
		CreatedAt:     t.CreatedAt,
		ReleaseYear:   t.ReleaseYear,
		ReleaseMonth:  t.ReleaseMonth,
		ReleaseDay:    t.ReleaseDay,
	}
}

// trackCollection accepts both shapes the bulk endpoint is known to return:
// a bare array, or an object wrapping a collection array. Core logic never
// sees the difference.
type trackCollection []trackJSON

func (tc *trackCollection) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimLeft(b, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []trackJSON
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*tc = items
		return nil
	}
	var wrapped struct {
		Collection []trackJSON `json:"collection"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	*tc = wrapped.Collection
	return nil
}

type playlistJSON struct {
	URN          string `json:"urn"`
	Title        string `json:"title"`
	PermalinkURL string `json:"permalink_url"`
	ArtworkURL   string `json:"artwork_url"`
	SetType      string `json:"set_type"`
	PlaylistType string `json:"playlist_type"`
	Tracks       []struct {
		URN string `json:"urn"`
	} `json:"tracks"`
}

func (p playlistJSON) isAlbum() bool {
	kind := p.SetType
	if kind == "" {
		kind = p.PlaylistType
	}
	return strings.EqualFold(kind, "album")
}
