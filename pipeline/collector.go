package pipeline

import (
	"context"
	"log/slog"

	"github.com/shamsmusic/scpulse/data"
)

// Platform is the upstream surface the collector consumes. Satisfied by
// *soundcloud.Client; faked in tests.
type Platform interface {
	FetchUser(ctx context.Context, userURN string) (data.Profile, error)
	FetchUserTracks(ctx context.Context, userURN string) ([]data.Track, error)
	HydrateTracks(ctx context.Context, urns []string) ([]data.Track, error)
	FetchUserAlbums(ctx context.Context, userURN string) ([]data.Album, error)
}

// Collector gathers everything the report needs for one artist: profile,
// hydrated tracks, albums, and the track→album join.
type Collector struct {
	sc           Platform
	log          *slog.Logger
	repairRounds int
}

func NewCollector(sc Platform, log *slog.Logger) *Collector {
	return &Collector{
		sc:           sc,
		log:          log,
		repairRounds: defaultRepairRounds,
	}
}

// Collection is one artist's fully collected snapshot.
type Collection struct {
	Ref      data.ArtistRef
	Profile  data.Profile
	Tracks   []data.Track
	Albums   []data.Album
	AlbumMap data.AlbumMap
}

// Collect runs the per-artist sequence. Errors are not caught here; the
// runner decides whether a failure is retried or recorded.
func (c *Collector) Collect(ctx context.Context, ref data.ArtistRef) (*Collection, error) {
	profile, err := c.sc.FetchUser(ctx, ref.URN)
	if err != nil {
		return nil, err
	}
	if profile.Followers == nil || profile.TrackCount == nil {
		// One extra fetch, soft-merged: keep whichever fetch supplied
		// each field. Not part of the HTTP client's retry budget.
		c.log.Warn("profile missing counts, refetching once", "urn", ref.URN)
		if again, err := c.sc.FetchUser(ctx, ref.URN); err == nil {
			profile.Merge(again)
		} else {
			c.log.Warn("profile refetch failed", "urn", ref.URN, "error", err)
		}
	}
	c.log.Info("profile", "urn", ref.URN, "username", profile.Username,
		"followers", profile.Followers, "track_count_total", profile.TrackCount)

	listing, err := c.sc.FetchUserTracks(ctx, ref.URN)
	if err != nil {
		return nil, err
	}
	urns := make([]string, 0, len(listing))
	for _, t := range listing {
		if t.URN != "" {
			urns = append(urns, t.URN)
		}
	}
	c.log.Info("track listing fetched", "urn", ref.URN, "tracks", len(urns))
	if profile.TrackCount != nil && int(*profile.TrackCount) != len(urns) {
		// private or removed tracks count toward the total but are not
		// listed, so divergence is expected
		c.log.Warn("listing length diverges from reported track count",
			"urn", ref.URN, "reported", *profile.TrackCount, "listed", len(urns))
	}

	tracks, err := hydrateReliable(ctx, c.log, c.sc.HydrateTracks, urns, c.repairRounds)
	if err != nil {
		return nil, err
	}

	albums, err := c.sc.FetchUserAlbums(ctx, ref.URN)
	if err != nil {
		return nil, err
	}

	return &Collection{
		Ref:      ref,
		Profile:  profile,
		Tracks:   tracks,
		Albums:   albums,
		AlbumMap: data.BuildAlbumMap(albums),
	}, nil
}
