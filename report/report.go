// Package report renders one run's collected rows into an xlsx workbook:
// tracks, albums, artists, a single-row meta sheet, and an errors sheet when
// there is anything to put on it.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shamsmusic/scpulse/data"
	"github.com/shamsmusic/scpulse/pipeline"
)

var trackHeader = []string{
	"artist_urn", "artist_username", "followers", "track_count_total",
	"track_urn", "track_title", "permalink_url", "artwork_url", "track_cover_sig",
	"playback_count", "likes_count", "comment_count", "reposts_count",
	"access", "streamable", "created_at",
	"release_date", "release_year", "release_month", "release_day",
	"in_album", "album_urns", "album_titles", "album_artwork_urls", "album_cover_sigs", "album_count",
}

var albumHeader = []string{
	"artist_urn", "artist_username", "album_urn", "album_title",
	"album_permalink_url", "album_artwork_url", "album_cover_sig", "album_track_count",
}

var artistHeader = []string{
	"artist_urn", "artist_input_name", "artist_username", "followers", "track_count_total",
}

var metaHeader = []string{
	"snapshot_date", "timestamp", "run_seconds",
	"artists_in", "artists_ok", "artists_failed",
	"tracks_total", "albums_total", "errors_total",
}

var errorHeader = []string{
	"timestamp", "artist_urn", "artist_input_name", "step", "http_status", "message",
}

// Filename names the workbook for one run, second-resolution so reruns never
// collide.
func Filename(ts time.Time) string {
	return "soundcloud_batch_" + ts.Format("20060102_150405") + ".xlsx"
}

// Write renders the result into outDir and returns the workbook path.
func Write(outDir string, res *pipeline.Result, ts time.Time) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("error creating output dir '%s': %w", outDir, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "tracks"); err != nil {
		return "", err
	}
	if err := writeSheet(f, "tracks", trackHeader, trackCells(res.TrackRows)); err != nil {
		return "", err
	}
	if err := addSheet(f, "albums", albumHeader, albumCells(res.AlbumRows)); err != nil {
		return "", err
	}
	if err := addSheet(f, "artists", artistHeader, artistCells(res.ArtistRows)); err != nil {
		return "", err
	}
	if err := addSheet(f, "meta", metaHeader, [][]any{metaCells(res.Summary)}); err != nil {
		return "", err
	}
	if len(res.Errors) > 0 {
		if err := addSheet(f, "errors", errorHeader, errorCells(res.Errors)); err != nil {
			return "", err
		}
	}

	path := filepath.Join(outDir, Filename(ts))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error writing workbook '%s': %w", path, err)
	}
	return path, nil
}

// AppendDriveLink rewrites the meta sheet with the uploaded file's id and
// share link, after the fact.
func AppendDriveLink(path, fileID, webLink string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("error reopening workbook '%s': %w", path, err)
	}
	defer f.Close()

	col := len(metaHeader) + 1
	for i, kv := range [][2]any{{"drive_file_id", fileID}, {"drive_webViewLink", webLink}} {
		head, err := excelize.CoordinatesToCellName(col+i, 1)
		if err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(col+i, 2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue("meta", head, kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue("meta", cell, kv[1]); err != nil {
			return err
		}
	}
	return f.Save()
}

func addSheet(f *excelize.File, name string, header []string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeSheet(f, name, header, rows)
}

func writeSheet(f *excelize.File, name string, header []string, rows [][]any) error {
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &head); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// opt unwraps an optional value; nil pointers become empty cells, which is
// how the workbook distinguishes "absent" from a real zero or empty string.
func opt[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func trackCells(rows []data.TrackRow) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{
			r.ArtistURN, r.ArtistUsername, opt(r.Followers), opt(r.TrackCountTotal),
			r.TrackURN, r.TrackTitle, r.PermalinkURL, r.ArtworkURL, r.TrackCoverSig,
			opt(r.PlaybackCount), opt(r.LikesCount), opt(r.CommentCount), opt(r.RepostsCount),
			r.Access, r.Streamable, r.CreatedAt,
			r.ReleaseDate, opt(r.ReleaseYear), opt(r.ReleaseMonth), opt(r.ReleaseDay),
			r.InAlbum, opt(r.AlbumURNs), opt(r.AlbumTitles), opt(r.AlbumArtworkURLs), opt(r.AlbumCoverSigs), r.AlbumCount,
		})
	}
	return out
}

func albumCells(rows []data.AlbumRow) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{
			r.ArtistURN, r.ArtistUsername, r.AlbumURN, r.AlbumTitle,
			r.AlbumPermalinkURL, r.AlbumArtworkURL, r.AlbumCoverSig, r.AlbumTrackCount,
		})
	}
	return out
}

func artistCells(rows []data.ArtistRow) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{
			r.ArtistURN, r.ArtistInputName, r.ArtistUsername, opt(r.Followers), opt(r.TrackCountTotal),
		})
	}
	return out
}

func metaCells(s data.RunSummary) []any {
	return []any{
		s.SnapshotDate, s.Timestamp, s.RunSeconds,
		s.ArtistsIn, s.ArtistsOK, s.ArtistsFailed,
		s.TracksTotal, s.AlbumsTotal, s.ErrorsTotal,
	}
}

func errorCells(rows []data.ErrorRecord) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{
			r.Timestamp, r.ArtistURN, r.InputName, r.Step, opt(r.HTTPStatus), r.Message,
		})
	}
	return out
}
