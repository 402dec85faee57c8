package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	v1 "github.com/vmunix/mediarr/internal/api/v1"
	"github.com/vmunix/mediarr/internal/events"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Daemon status, queues and recent scans",
	Args:  cobra.NoArgs,
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	status, err := NewClient(serverURL).Status()
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), status)
	}
	printStatus(cmd.OutOrStdout(), serverURL, status)
	return nil
}

func printStatus(w io.Writer, server string, s *v1.StatusResponse) {
	fmt.Fprintf(w, "mediarr v%s | Server: %s (%s) | Uptime: %s\n\n", s.Version, server, s.Status, s.Uptime)

	fmt.Fprintf(w, "Libraries:  %d\n", s.Libraries)
	if s.Catalog != nil {
		state := "not loaded"
		if s.Catalog.Loaded {
			state = fmt.Sprintf("%d entries", s.Catalog.Entries)
		}
		fmt.Fprintf(w, "Catalog:    %s\n", state)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Queues")
	fmt.Fprintf(w, "  Images:      %d pending, %d failed\n", s.Queues.Images.Pending, s.Queues.Images.Failed)
	fmt.Fprintf(w, "  Thumbnails:  %d pending, %d failed\n", s.Queues.Thumbnails.Pending, s.Queues.Thumbnails.Failed)

	if len(s.LastScans) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent scans")
	tw := newTable(w)
	for _, sc := range s.LastScans {
		fmt.Fprintf(tw, "  %s\t%s\n", sc.OccurredAt().Local().Format(time.DateTime), scanSummary(sc))
	}
	_ = tw.Flush()
}

func scanSummary(sc *events.ScanCompleted) string {
	summary := fmt.Sprintf("%s\t%s\t+%d series, +%d episodes, +%d movies, +%d/-%d files\t%dms",
		sc.Library, sc.Mode, sc.SeriesAdded, sc.EpisodesAdded, sc.MoviesAdded, sc.FilesAdded, sc.FilesRemoved, sc.DurationMS)
	if sc.Error != "" {
		summary += "\terror: " + sc.Error
	}
	return summary
}
