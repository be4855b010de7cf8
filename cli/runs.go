package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shamsmusic/scpulse/config"
	"github.com/shamsmusic/scpulse/db"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs from the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.LedgerPath == "" {
			return fmt.Errorf("must set RUN_LEDGER_PATH")
		}
		ledger, err := db.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer ledger.Close()

		runs, err := ledger.RecentRuns(runsLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tARTISTS\tTRACKS\tALBUMS\tERRORS\tSECONDS\tDRIVE")
		for _, r := range runs {
			link := r.DriveWebLink
			if link == "" {
				link = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%d/%d\t%d\t%d\t%d\t%.2f\t%s\n",
				r.ID, r.SnapshotDate, r.ArtistsOK, r.ArtistsIn,
				r.TracksTotal, r.AlbumsTotal, r.ErrorsTotal, r.RunSeconds, link)
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "number of runs to show")
	rootCmd.AddCommand(runsCmd)
}
