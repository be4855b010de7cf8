package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shamsmusic/scpulse/artists"
	"github.com/shamsmusic/scpulse/config"
	"github.com/shamsmusic/scpulse/db"
	"github.com/shamsmusic/scpulse/drive"
	"github.com/shamsmusic/scpulse/pipeline"
	"github.com/shamsmusic/scpulse/report"
	"github.com/shamsmusic/scpulse/soundcloud"
	"github.com/shamsmusic/scpulse/telegram"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect artist metrics and deliver the report",
	Long: "run loads the artist list, fetches every artist's profile, tracks,\n" +
		"and albums from the SoundCloud API, writes the Excel report, and then\n" +
		"uploads and announces it if Drive and Telegram are configured.\n" +
		"Requires SC_CLIENT_ID and SC_CLIENT_SECRET.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBatch(ctx context.Context) error {
	cfg := config.Load()
	log, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return fmt.Errorf("must set SC_CLIENT_ID and SC_CLIENT_SECRET")
	}

	sc := soundcloud.New(soundcloud.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Timeout:      cfg.HTTPTimeout,
	}, log)

	// Drive serves double duty: artist-list source and report destination.
	// Losing it degrades the run, it doesn't abort it.
	var drv *drive.Service
	if cfg.DriveTokenPath != "" {
		var err error
		drv, err = drive.NewService(ctx, cfg.DriveTokenPath, log)
		if err != nil {
			log.Warn("drive unavailable", "error", err)
		}
	}
	var remote artists.Remote
	if drv != nil {
		remote = drv
	}

	refs, err := artists.Load(ctx, log, remote, artists.Source{
		SheetFileID: cfg.SheetFileID,
		DriveFileID: cfg.ArtistsDriveFile,
		LocalPath:   cfg.ArtistsPath,
	})
	if err != nil {
		return fmt.Errorf("error loading artist list: %w", err)
	}
	log.Info("starting run", "artists", len(refs))

	runner := pipeline.NewRunner(pipeline.NewCollector(sc, log), log, cfg.Timezone)
	res, err := runner.Run(ctx, refs)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	path, err := report.Write(cfg.OutDir, res, time.Now().In(cfg.Timezone))
	if err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	log.Info("report written", "path", path,
		"artists_ok", res.Summary.ArtistsOK,
		"artists_failed", res.Summary.ArtistsFailed,
		"tracks", res.Summary.TracksTotal,
		"albums", res.Summary.AlbumsTotal)

	var fileID, webLink string
	if cfg.UploadToDrive && drv != nil {
		fileID, webLink, err = drv.Upload(ctx, path, cfg.DriveFolderID, cfg.DriveShareAnyone)
		if err != nil {
			log.Warn("drive upload failed", "error", err)
		} else {
			log.Info("report uploaded", "file_id", fileID, "link", webLink)
			if err := report.AppendDriveLink(path, fileID, webLink); err != nil {
				log.Warn("could not write drive link into report", "error", err)
			}
		}
	}

	if cfg.LedgerPath != "" {
		if ledger, err := db.Open(cfg.LedgerPath); err != nil {
			log.Warn("ledger unavailable", "error", err)
		} else {
			run := db.RunFromSummary(res.Summary, path, fileID, webLink)
			if err := ledger.RecordRun(&run, res.Errors); err != nil {
				log.Warn("could not record run in ledger", "error", err)
			}
			if err := ledger.Close(); err != nil {
				log.Warn("error closing ledger", "error", err)
			}
		}
	}

	if cfg.TelegramEnabled {
		telegram.New(cfg.TelegramToken, cfg.TelegramChatID, log).
			Notify(ctx, res.Summary, path, webLink)
	}

	return nil
}
