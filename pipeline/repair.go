package pipeline

import (
	"context"
	"log/slog"

	"github.com/shamsmusic/scpulse/data"
)

// hydrateFunc matches soundcloud.Client.HydrateTracks.
type hydrateFunc func(ctx context.Context, urns []string) ([]data.Track, error)

const defaultRepairRounds = 3

// hydrateReliable hydrates the given URNs and then runs up to maxRounds
// targeted repair rounds over the ones that came back missing or with null
// engagement metrics. Zero is valid data; null is not. The output preserves
// the caller's input order, each URN at most once; URNs that never resolved
// are omitted rather than null-padded.
//
// Repair is a data-quality mechanism: a hard failure during a repair round
// is logged and repair stops, returning whatever resolved so far. Only the
// initial full hydration failing is a real error.
func hydrateReliable(ctx context.Context, log *slog.Logger, hydrate hydrateFunc, urns []string, maxRounds int) ([]data.Track, error) {
	if len(urns) == 0 {
		return nil, nil
	}

	byURN := make(map[string]data.Track, len(urns))
	merge := func(tracks []data.Track) {
		for _, t := range tracks {
			if t.URN != "" {
				byURN[t.URN] = t
			}
		}
	}

	tracks, err := hydrate(ctx, urns)
	if err != nil {
		return nil, err
	}
	merge(tracks)

	for round := 1; round <= maxRounds; round++ {
		pending := pendingURNs(urns, byURN)
		if len(pending) == 0 {
			break
		}
		log.Warn("re-hydrating incomplete tracks", "round", round, "pending", len(pending))
		fixed, err := hydrate(ctx, pending)
		if err != nil {
			log.Warn("repair round failed, keeping what resolved", "round", round, "error", err)
			break
		}
		merge(fixed)
	}

	if pending := pendingURNs(urns, byURN); len(pending) > 0 {
		var missing, incomplete int
		for _, urn := range pending {
			if _, ok := byURN[urn]; !ok {
				missing++
			} else {
				incomplete++
			}
		}
		log.Warn("hydration still incomplete after repair",
			"missing", missing, "null_metrics", incomplete, "urns", pending)
	}

	out := make([]data.Track, 0, len(byURN))
	seen := make(map[string]struct{}, len(urns))
	for _, urn := range urns {
		if _, dup := seen[urn]; dup {
			continue
		}
		seen[urn] = struct{}{}
		if t, ok := byURN[urn]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// pendingURNs is the to-fix work queue for the next repair round: input URNs
// with no hydrated record, plus ones whose record has a null metric.
func pendingURNs(urns []string, byURN map[string]data.Track) []string {
	var pending []string
	seen := make(map[string]struct{}, len(urns))
	for _, urn := range urns {
		if _, dup := seen[urn]; dup {
			continue
		}
		seen[urn] = struct{}{}
		t, ok := byURN[urn]
		if !ok || !t.MetricsComplete() {
			pending = append(pending, urn)
		}
	}
	return pending
}
