package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shamsmusic/scpulse/data"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func int64p(v int64) *int64 { return &v }

func completeTrack(urn string) data.Track {
	return data.Track{
		URN:           urn,
		PlaybackCount: int64p(0),
		LikesCount:    int64p(1),
		CommentCount:  int64p(0),
		RepostsCount:  int64p(0),
	}
}

func TestHydrateReliableRepairsMissingAndNullMetrics(t *testing.T) {
	var calls [][]string
	hydrate := func(ctx context.Context, urns []string) ([]data.Track, error) {
		calls = append(calls, append([]string(nil), urns...))
		switch len(calls) {
		case 1:
			// t2 comes back with a null metric, t3 is dropped entirely
			nullMetric := completeTrack("t2")
			nullMetric.PlaybackCount = nil
			return []data.Track{completeTrack("t1"), nullMetric}, nil
		default:
			return []data.Track{completeTrack("t2"), completeTrack("t3")}, nil
		}
	}

	tracks, err := hydrateReliable(context.Background(), testLogger(), hydrate,
		[]string{"t1", "t2", "t3"}, defaultRepairRounds)
	if err != nil {
		t.Fatalf("hydrateReliable failed: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("expected 1 hydration + 1 repair round, got %d calls", len(calls))
	}
	wantFix := []string{"t2", "t3"}
	if len(calls[1]) != 2 || calls[1][0] != wantFix[0] || calls[1][1] != wantFix[1] {
		t.Fatalf("repair round should target exactly the to-fix set, got %v", calls[1])
	}

	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(tracks))
	}
	for i, want := range []string{"t1", "t2", "t3"} {
		if tracks[i].URN != want {
			t.Errorf("output order broken at %d: got %q want %q", i, tracks[i].URN, want)
		}
	}
	if tracks[1].PlaybackCount == nil {
		t.Error("t2's metrics should have been repaired")
	}
}

func TestHydrateReliableZeroMetricsAreComplete(t *testing.T) {
	calls := 0
	hydrate := func(ctx context.Context, urns []string) ([]data.Track, error) {
		calls++
		return []data.Track{completeTrack("t1")}, nil
	}

	if _, err := hydrateReliable(context.Background(), testLogger(), hydrate,
		[]string{"t1"}, defaultRepairRounds); err != nil {
		t.Fatalf("hydrateReliable failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("zero-valued metrics must not trigger repair, got %d calls", calls)
	}
}

func TestHydrateReliableBoundsRepairRounds(t *testing.T) {
	calls := 0
	hydrate := func(ctx context.Context, urns []string) ([]data.Track, error) {
		calls++
		// never returns anything; every round leaves the full set pending
		return nil, nil
	}

	tracks, err := hydrateReliable(context.Background(), testLogger(), hydrate,
		[]string{"t1", "t2"}, defaultRepairRounds)
	if err != nil {
		t.Fatalf("hydrateReliable must not fail on unresolved urns: %v", err)
	}
	if calls != 1+defaultRepairRounds {
		t.Fatalf("expected %d calls, got %d", 1+defaultRepairRounds, calls)
	}
	if len(tracks) != 0 {
		t.Fatalf("unresolved urns must be omitted, not null-padded: %+v", tracks)
	}
}

func TestHydrateReliableDedupesInput(t *testing.T) {
	hydrate := func(ctx context.Context, urns []string) ([]data.Track, error) {
		return []data.Track{completeTrack("t1")}, nil
	}
	tracks, err := hydrateReliable(context.Background(), testLogger(), hydrate,
		[]string{"t1", "t1"}, defaultRepairRounds)
	if err != nil {
		t.Fatalf("hydrateReliable failed: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("a urn must appear at most once in the output, got %d", len(tracks))
	}
}

func TestHydrateReliableInitialFailurePropagates(t *testing.T) {
	boom := errors.New("upstream down")
	hydrate := func(ctx context.Context, urns []string) ([]data.Track, error) {
		return nil, boom
	}
	if _, err := hydrateReliable(context.Background(), testLogger(), hydrate,
		[]string{"t1"}, defaultRepairRounds); !errors.Is(err, boom) {
		t.Fatalf("expected initial hydration error to propagate, got %v", err)
	}
}

func TestHydrateReliableRepairFailureDegrades(t *testing.T) {
	calls := 0
	hydrate := func(ctx context.Context, urns []string) ([]data.Track, error) {
		calls++
		if calls == 1 {
			return []data.Track{completeTrack("t1")}, nil
		}
		return nil, errors.New("rate limited out")
	}

	tracks, err := hydrateReliable(context.Background(), testLogger(), hydrate,
		[]string{"t1", "t2"}, defaultRepairRounds)
	if err != nil {
		t.Fatalf("repair round failure must degrade, not fail: %v", err)
	}
	if len(tracks) != 1 || tracks[0].URN != "t1" {
		t.Fatalf("expected the already-resolved track back, got %+v", tracks)
	}
}
