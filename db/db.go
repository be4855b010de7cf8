// Package db keeps a small sqlite ledger of past runs: one row per run plus
// the per-artist failures it ended with. It exists for operational
// bookkeeping, not analysis; metric history lives in the workbooks.
package db

import (
	_ "embed"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shamsmusic/scpulse/data"
)

// DB represents our sqlite3 database file.
type DB struct{ *gorm.DB }

//go:embed schema.sql
var schema string

// Open returns a connection to a migrated sqlite3 database file on disk,
// creating the file and running migrations if necessary.
func Open(filename string) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(filename), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("error opening ledger file at '%s': %w", filename, err)
	}

	db := &DB{gdb}

	if err := db.Exec(schema).Error; err != nil {
		return nil, fmt.Errorf("error migrating ledger at '%s': %w", filename, err)
	}

	return db, nil
}

func (db *DB) Close() error {
	pool, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("error getting ledger connection pool: %w", err)
	}
	return pool.Close()
}

// Run is one completed batch run.
type Run struct {
	ID            uint
	SnapshotDate  string
	Timestamp     string
	RunSeconds    float64
	ArtistsIn     int
	ArtistsOK     int
	ArtistsFailed int
	TracksTotal   int
	AlbumsTotal   int
	ErrorsTotal   int
	ReportPath    string
	DriveFileID   string
	DriveWebLink  string
}

// RunError is one artist that was still failing after the retry pass.
type RunError struct {
	ID              uint
	RunID           uint
	Timestamp       string
	ArtistURN       string
	ArtistInputName string
	Step            string
	HTTPStatus      *int
	Message         string
}

// RunFromSummary flattens a run summary plus its delivery outcome into a
// ledger row.
func RunFromSummary(s data.RunSummary, reportPath, driveFileID, driveWebLink string) Run {
	return Run{
		SnapshotDate:  s.SnapshotDate,
		Timestamp:     s.Timestamp,
		RunSeconds:    s.RunSeconds,
		ArtistsIn:     s.ArtistsIn,
		ArtistsOK:     s.ArtistsOK,
		ArtistsFailed: s.ArtistsFailed,
		TracksTotal:   s.TracksTotal,
		AlbumsTotal:   s.AlbumsTotal,
		ErrorsTotal:   s.ErrorsTotal,
		ReportPath:    reportPath,
		DriveFileID:   driveFileID,
		DriveWebLink:  driveWebLink,
	}
}

// RecordRun inserts the run and its error rows in one transaction.
func (db *DB) RecordRun(run *Run, errs []data.ErrorRecord) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("error inserting run: %w", err)
		}
		for _, e := range errs {
			row := RunError{
				RunID:           run.ID,
				Timestamp:       e.Timestamp,
				ArtistURN:       e.ArtistURN,
				ArtistInputName: e.InputName,
				Step:            e.Step,
				HTTPStatus:      e.HTTPStatus,
				Message:         e.Message,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("error inserting run error for '%s': %w", e.ArtistURN, err)
			}
		}
		return nil
	})
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	var runs []Run
	if err := db.
		Order("id desc").
		Limit(limit).
		Find(&runs).
		Error; err != nil {
		return nil, fmt.Errorf("error listing runs: %w", err)
	}
	return runs, nil
}

// RunErrors returns the error rows recorded for one run.
func (db *DB) RunErrors(runID uint) ([]RunError, error) {
	var errs []RunError
	if err := db.
		Where("run_id = ?", runID).
		Order("id asc").
		Find(&errs).
		Error; err != nil {
		return nil, fmt.Errorf("error listing run errors for run %d: %w", runID, err)
	}
	return errs, nil
}
