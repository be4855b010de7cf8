// Package artists loads the artist input list from a tabular source (xlsx,
// csv, or a Drive-hosted sheet) and normalizes it into deduplicated artist
// refs. Column names are matched against a candidate table because the
// operators' sheets have carried several header spellings over time,
// including Persian ones.
package artists

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shamsmusic/scpulse/data"
)

var urnCandidates = []string{
	"artist_urn", "urn", "user_urn", "soundcloud_urn",
	"artist_id", "user_id",
	"شناسه", "شناسه ی ارتیست", "شناسه ارتیست",
}

var inputNameCandidates = []string{
	"artist_input_name", "name_input", "my_name", "artist_alias",
	"اسم من", "نام ورودی", "نامی که من گذاشتم",
}

// Remote is the Drive surface the loader needs. Satisfied by *drive.Service;
// nil when Drive is not configured.
type Remote interface {
	ExportSheetCSV(ctx context.Context, fileID string) ([]byte, error)
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// Source is the fallback chain for the artist list: a Google Sheet export,
// then a Drive-hosted file, then a local path.
type Source struct {
	SheetFileID string
	DriveFileID string
	LocalPath   string
}

// Load tries each configured source in order and returns the refs from the
// first one that yields a parseable table.
func Load(ctx context.Context, log *slog.Logger, remote Remote, src Source) ([]data.ArtistRef, error) {
	if remote != nil && src.SheetFileID != "" {
		b, err := remote.ExportSheetCSV(ctx, src.SheetFileID)
		if err == nil {
			if refs, err := ParseCSV(b); err == nil {
				log.Info("artist list loaded from sheet", "file_id", src.SheetFileID, "artists", len(refs))
				return refs, nil
			} else {
				log.Warn("sheet export did not parse", "file_id", src.SheetFileID, "error", err)
			}
		} else {
			log.Warn("sheet export failed", "file_id", src.SheetFileID, "error", err)
		}
	}

	if remote != nil && src.DriveFileID != "" {
		b, err := remote.DownloadFile(ctx, src.DriveFileID)
		if err == nil {
			refs, err := ParseXLSX(b)
			if err != nil {
				refs, err = ParseCSV(b)
			}
			if err == nil {
				log.Info("artist list downloaded from drive", "file_id", src.DriveFileID, "artists", len(refs))
				return refs, nil
			}
			log.Warn("drive file did not parse as xlsx or csv", "file_id", src.DriveFileID, "error", err)
		} else {
			log.Warn("drive download failed", "file_id", src.DriveFileID, "error", err)
		}
	}

	if src.LocalPath != "" {
		if _, err := os.Stat(src.LocalPath); err == nil {
			refs, err := LoadFile(src.LocalPath)
			if err != nil {
				return nil, err
			}
			log.Info("artist list loaded from local file", "path", src.LocalPath, "artists", len(refs))
			return refs, nil
		}
	}

	return nil, errors.New("no artist list source available")
}

// LoadFile reads a local xlsx or csv artist list, picking the parser by
// extension and trying both when the extension is unfamiliar.
func LoadFile(path string) ([]data.ArtistRef, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading artist list '%s': %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ParseXLSX(b)
	case ".csv":
		return ParseCSV(b)
	default:
		refs, err := ParseXLSX(b)
		if err != nil {
			return ParseCSV(b)
		}
		return refs, nil
	}
}

// ParseXLSX parses the first sheet of a workbook.
func ParseXLSX(b []byte) ([]data.ArtistRef, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("error reading sheet '%s': %w", sheets[0], err)
	}
	return ParseTable(rows)
}

// ParseCSV parses a comma-separated artist list, tolerating a UTF-8 BOM and
// ragged rows.
func ParseCSV(b []byte) ([]data.ArtistRef, error) {
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing csv: %w", err)
	}
	return ParseTable(rows)
}

// ParseTable resolves the identifier and input-name columns, normalizes
// identifiers to canonical URN form, drops blanks, and dedupes preserving
// first-occurrence order.
func ParseTable(rows [][]string) ([]data.ArtistRef, error) {
	if len(rows) == 0 {
		return nil, errors.New("artist table is empty")
	}
	header := rows[0]

	urnCol := findColumn(header, urnCandidates)
	if urnCol < 0 {
		return nil, fmt.Errorf("no identifier column found; expected one of %v, have %v",
			urnCandidates, header)
	}
	nameCol := findColumn(header, inputNameCandidates)

	var refs []data.ArtistRef
	for _, row := range rows[1:] {
		urn := data.NormalizeURN(cellAt(row, urnCol))
		if urn == "" {
			continue
		}
		ref := data.ArtistRef{URN: urn}
		if nameCol >= 0 {
			ref.InputName = strings.TrimSpace(cellAt(row, nameCol))
		}
		refs = append(refs, ref)
	}
	return data.DedupeRefs(refs), nil
}

func findColumn(header []string, candidates []string) int {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	for _, cand := range candidates {
		for i, col := range header {
			if norm(col) == norm(cand) {
				return i
			}
		}
	}
	return -1
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
