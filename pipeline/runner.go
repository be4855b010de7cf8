package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/shamsmusic/scpulse/data"
	"github.com/shamsmusic/scpulse/soundcloud"
)

// Runner sweeps the artist list twice: a first pass over everyone, then a
// retry pass over only the artists whose first attempt failed. Artists that
// fail both passes become error records; nothing crashes the run.
type Runner struct {
	collect func(ctx context.Context, ref data.ArtistRef) (*Collection, error)
	log     *slog.Logger
	loc     *time.Location
	now     func() time.Time
}

func NewRunner(col *Collector, log *slog.Logger, loc *time.Location) *Runner {
	if loc == nil {
		loc = time.UTC
	}
	return &Runner{
		collect: col.Collect,
		log:     log,
		loc:     loc,
		now:     time.Now,
	}
}

// Result aggregates every row collection a run produces, plus the summary.
type Result struct {
	ArtistRows []data.ArtistRow
	AlbumRows  []data.AlbumRow
	TrackRows  []data.TrackRow
	Errors     []data.ErrorRecord
	Summary    data.RunSummary
}

// Run executes both passes over the (deduplicated) artist list and computes
// the summary. Every artist ends either succeeded or failed; at most two
// attempts each.
func (r *Runner) Run(ctx context.Context, refs []data.ArtistRef) (*Result, error) {
	start := r.now()
	refs = data.DedupeRefs(refs)
	r.log.Info("run starting", "artists", len(refs))

	res := &Result{}
	var retryQueue []data.ArtistRef

	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.log.Info("collecting artist", "n", i+1, "of", len(refs),
			"urn", ref.URN, "input_name", ref.InputName)
		col, err := r.collect(ctx, ref)
		if err != nil {
			r.log.Warn("first pass failed, queued for retry", "urn", ref.URN, "error", err)
			retryQueue = append(retryQueue, ref)
			continue
		}
		r.record(res, col)
	}

	if len(retryQueue) > 0 {
		r.log.Info("retry pass", "artists", len(retryQueue))
	}
	for _, ref := range retryQueue {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		col, err := r.collect(ctx, ref)
		if err != nil {
			r.log.Error("retry pass failed", "urn", ref.URN, "error", err)
			res.Errors = append(res.Errors, r.errorRecord(ref, err))
			continue
		}
		r.record(res, col)
	}

	end := r.now()
	elapsed := end.Sub(start).Seconds()
	local := end.In(r.loc)
	res.Summary = data.RunSummary{
		SnapshotDate:  local.Format("2006-01-02"),
		Timestamp:     local.Format("2006-01-02 15:04:05"),
		RunSeconds:    math.Round(elapsed*100) / 100,
		ArtistsIn:     len(refs),
		ArtistsOK:     len(res.ArtistRows),
		ArtistsFailed: len(res.Errors),
		TracksTotal:   len(res.TrackRows),
		AlbumsTotal:   len(res.AlbumRows),
		ErrorsTotal:   len(res.Errors),
	}
	r.log.Info("run finished",
		"artists_ok", res.Summary.ArtistsOK,
		"artists_failed", res.Summary.ArtistsFailed,
		"tracks_total", res.Summary.TracksTotal,
		"albums_total", res.Summary.AlbumsTotal,
		"run_seconds", res.Summary.RunSeconds)
	return res, nil
}

func (r *Runner) record(res *Result, col *Collection) {
	res.ArtistRows = append(res.ArtistRows, col.artistRow())
	res.AlbumRows = append(res.AlbumRows, col.albumRows()...)
	res.TrackRows = append(res.TrackRows, col.trackRows()...)
}

func (r *Runner) errorRecord(ref data.ArtistRef, err error) data.ErrorRecord {
	rec := data.ErrorRecord{
		Timestamp: r.now().In(r.loc).Format("2006-01-02T15:04:05-07:00"),
		ArtistURN: ref.URN,
		InputName: ref.InputName,
	}
	var se *soundcloud.StatusError
	if errors.As(err, &se) {
		status := se.StatusCode
		rec.Step = "retry_http"
		rec.HTTPStatus = &status
		rec.Message = se.Body
		return rec
	}
	rec.Step = "retry_exception"
	rec.Message = err.Error()
	return rec
}
