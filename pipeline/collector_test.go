package pipeline

import (
	"context"
	"testing"

	"github.com/shamsmusic/scpulse/data"
)

type fakePlatform struct {
	profiles     []data.Profile
	profileCalls int
	listing      []data.Track
	albums       []data.Album
	hydrated     []data.Track
	hydrateCalls int
}

func (f *fakePlatform) FetchUser(ctx context.Context, urn string) (data.Profile, error) {
	p := f.profiles[f.profileCalls%len(f.profiles)]
	f.profileCalls++
	return p, nil
}

func (f *fakePlatform) FetchUserTracks(ctx context.Context, urn string) ([]data.Track, error) {
	return f.listing, nil
}

func (f *fakePlatform) HydrateTracks(ctx context.Context, urns []string) ([]data.Track, error) {
	f.hydrateCalls++
	return f.hydrated, nil
}

func (f *fakePlatform) FetchUserAlbums(ctx context.Context, urn string) ([]data.Album, error) {
	return f.albums, nil
}

func TestCollectRefetchesIncompleteProfileOnce(t *testing.T) {
	followers := int64(7)
	count := int64(1)
	fake := &fakePlatform{
		profiles: []data.Profile{
			{Username: "artist", Followers: &followers},
			{Username: "artist", Followers: &followers, TrackCount: &count},
		},
		listing:  []data.Track{{URN: "t1"}},
		hydrated: []data.Track{completeTrack("t1")},
	}

	col, err := NewCollector(fake, testLogger()).
		Collect(context.Background(), data.ArtistRef{URN: "soundcloud:users:1"})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if fake.profileCalls != 2 {
		t.Fatalf("expected exactly one profile refetch, got %d calls", fake.profileCalls)
	}
	if col.Profile.TrackCount == nil || *col.Profile.TrackCount != 1 {
		t.Errorf("refetched track count not merged: %v", col.Profile.TrackCount)
	}
	if col.Profile.Followers == nil || *col.Profile.Followers != 7 {
		t.Errorf("first fetch's followers lost: %v", col.Profile.Followers)
	}
}

func TestCollectCompleteProfileFetchedOnce(t *testing.T) {
	followers := int64(7)
	count := int64(0)
	fake := &fakePlatform{
		profiles: []data.Profile{{Username: "artist", Followers: &followers, TrackCount: &count}},
	}

	if _, err := NewCollector(fake, testLogger()).
		Collect(context.Background(), data.ArtistRef{URN: "soundcloud:users:1"}); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if fake.profileCalls != 1 {
		t.Fatalf("complete profile must not be refetched, got %d calls", fake.profileCalls)
	}
}

func TestCollectJoinsAlbumMembership(t *testing.T) {
	followers := int64(1)
	count := int64(2)
	fake := &fakePlatform{
		profiles: []data.Profile{{Username: "artist", Followers: &followers, TrackCount: &count}},
		listing:  []data.Track{{URN: "t1"}, {URN: "t2"}},
		hydrated: []data.Track{completeTrack("t1"), completeTrack("t2")},
		albums: []data.Album{
			{URN: "p1", Title: "The Album", TrackURNs: []string{"t2"}},
		},
	}

	col, err := NewCollector(fake, testLogger()).
		Collect(context.Background(), data.ArtistRef{URN: "soundcloud:users:1"})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	rows := col.trackRows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 track rows, got %d", len(rows))
	}
	if rows[0].InAlbum {
		t.Errorf("t1 should not be in an album: %+v", rows[0].AlbumMembership)
	}
	if !rows[1].InAlbum || rows[1].AlbumCount != 1 {
		t.Errorf("t2 membership not joined: %+v", rows[1].AlbumMembership)
	}
	if rows[1].AlbumTitles == nil || *rows[1].AlbumTitles != "The Album" {
		t.Errorf("t2 album titles = %v", rows[1].AlbumTitles)
	}
}
