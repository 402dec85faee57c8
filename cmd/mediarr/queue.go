package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var queuesCmd = &cobra.Command{
	Use:   "queues",
	Short: "Show image and thumbnail queue counts",
	Args:  cobra.NoArgs,
	RunE:  runQueuesCmd,
}

var unmatchedCmd = &cobra.Command{
	Use:   "unmatched",
	Short: "List series no metadata provider recognized",
	Args:  cobra.NoArgs,
	RunE:  runUnmatchedCmd,
}

func init() {
	rootCmd.AddCommand(queuesCmd, unmatchedCmd)
	unmatchedCmd.Flags().Int64P("library", "l", 0, "Only this library")
}

func runQueuesCmd(cmd *cobra.Command, _ []string) error {
	q, err := NewClient(serverURL).Queues()
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), q)
	}
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "QUEUE\tPENDING\tFAILED")
	fmt.Fprintf(tw, "images\t%d\t%d\n", q.Images.Pending, q.Images.Failed)
	fmt.Fprintf(tw, "thumbnails\t%d\t%d\n", q.Thumbnails.Pending, q.Thumbnails.Failed)
	return tw.Flush()
}

func runUnmatchedCmd(cmd *cobra.Command, _ []string) error {
	libraryID, _ := cmd.Flags().GetInt64("library")
	list, err := NewClient(serverURL).Unmatched(libraryID)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), list)
	}
	printUnmatched(cmd.OutOrStdout(), list)
	return nil
}

func printUnmatched(w io.Writer, list *ListUnmatchedResponse) {
	if list.Total == 0 {
		fmt.Fprintln(w, "No unmatched series.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "LIBRARY\tFOLDER\tTRIED\tATTEMPTS\tLAST\tREASON")
	for _, u := range list.Items {
		tried := u.AttemptedTitle
		if u.AttemptedYear > 0 {
			tried = fmt.Sprintf("%s (%d)", tried, u.AttemptedYear)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			u.LibraryID, u.FolderName, tried, u.AttemptCount, u.LastAttemptAt.Format("2006-01-02 15:04"), u.FailureReason)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d unmatched series\n", list.Total)
}
