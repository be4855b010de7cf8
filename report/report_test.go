package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shamsmusic/scpulse/data"
	"github.com/shamsmusic/scpulse/pipeline"
)

func int64p(v int64) *int64 { return &v }

func sampleResult() *pipeline.Result {
	inAlbum := "soundcloud:playlists:1"
	return &pipeline.Result{
		ArtistRows: []data.ArtistRow{
			{ArtistURN: "soundcloud:users:1", ArtistUsername: "one", Followers: int64p(10)},
		},
		AlbumRows: []data.AlbumRow{
			{ArtistURN: "soundcloud:users:1", AlbumURN: "soundcloud:playlists:1", AlbumTitle: "Alb", AlbumTrackCount: 2},
		},
		TrackRows: []data.TrackRow{
			{
				ArtistURN:     "soundcloud:users:1",
				TrackURN:      "soundcloud:tracks:1",
				TrackTitle:    "Song",
				PlaybackCount: int64p(0),
				AlbumMembership: data.AlbumMembership{
					InAlbum:    true,
					AlbumURNs:  &inAlbum,
					AlbumCount: 1,
				},
			},
			{
				ArtistURN:  "soundcloud:users:1",
				TrackURN:   "soundcloud:tracks:2",
				TrackTitle: "Loose Song",
			},
		},
		Summary: data.RunSummary{
			SnapshotDate: "2025-01-02",
			Timestamp:    "2025-01-02 03:04:05",
			RunSeconds:   1.23,
			ArtistsIn:    1,
			ArtistsOK:    1,
			TracksTotal:  2,
			AlbumsTotal:  1,
		},
	}
}

func TestWriteProducesAllSheets(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	path, err := Write(dir, sampleResult(), ts)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if filepath.Base(path) != "soundcloud_batch_20250102_030405.xlsx" {
		t.Errorf("unexpected filename: %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("workbook did not reopen: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := map[string]bool{"tracks": true, "albums": true, "artists": true, "meta": true}
	for _, s := range sheets {
		delete(want, s)
		if s == "errors" {
			t.Error("errors sheet must be omitted when there are no errors")
		}
	}
	if len(want) != 0 {
		t.Fatalf("missing sheets %v, have %v", want, sheets)
	}

	rows, err := f.GetRows("tracks")
	if err != nil {
		t.Fatalf("reading tracks sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("tracks sheet should have header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "artist_urn" {
		t.Errorf("tracks header = %v", rows[0])
	}

	meta, err := f.GetRows("meta")
	if err != nil {
		t.Fatalf("reading meta sheet: %v", err)
	}
	if len(meta) != 2 {
		t.Fatalf("meta sheet should have exactly one data row, got %d", len(meta)-1)
	}
}

func TestWriteIncludesErrorsSheetWhenPresent(t *testing.T) {
	res := sampleResult()
	status := 404
	res.Errors = []data.ErrorRecord{
		{Timestamp: "2025-01-02T03:04:05+00:00", ArtistURN: "soundcloud:users:9",
			Step: "retry_http", HTTPStatus: &status, Message: "gone"},
	}
	res.Summary.ErrorsTotal = 1

	path, err := Write(t.TempDir(), res, time.Now())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("errors")
	if err != nil {
		t.Fatalf("errors sheet missing: %v", err)
	}
	if len(rows) != 2 || rows[1][3] != "retry_http" || rows[1][4] != "404" {
		t.Fatalf("unexpected errors sheet contents: %v", rows)
	}
}

func TestAppendDriveLink(t *testing.T) {
	path, err := Write(t.TempDir(), sampleResult(), time.Now())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := AppendDriveLink(path, "file-123", "https://drive.example/view"); err != nil {
		t.Fatalf("AppendDriveLink failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("meta")
	if err != nil {
		t.Fatalf("meta sheet: %v", err)
	}
	header, row := rows[0], rows[1]
	if header[len(header)-1] != "drive_webViewLink" || header[len(header)-2] != "drive_file_id" {
		t.Fatalf("link columns not appended: %v", header)
	}
	if row[len(row)-2] != "file-123" || row[len(row)-1] != "https://drive.example/view" {
		t.Fatalf("link values not written: %v", row)
	}
}
