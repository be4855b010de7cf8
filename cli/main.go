package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scpulse",
	Short: "SoundCloud artist metrics batch",
	Long: "scpulse fetches profile, track, and album metrics for a list of\n" +
		"SoundCloud artists, writes an Excel report, and optionally delivers it\n" +
		"to Google Drive and Telegram.",
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
