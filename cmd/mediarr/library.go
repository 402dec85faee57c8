package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var librariesCmd = &cobra.Command{
	Use:     "libraries",
	Aliases: []string{"libs"},
	Short:   "List configured libraries",
	Args:    cobra.NoArgs,
	RunE:    runLibrariesCmd,
}

var scanCmd = &cobra.Command{
	Use:   "scan [library-id]",
	Short: "Scan a library",
	Long: `Scan a library on the daemon. The default is a full scan; --quick
only adds new files and removes deleted ones, --missing fills in
metadata for items that have none. With --all, every library gets a
quick scan.

Examples:
  mediarr scan 1
  mediarr scan 1 --quick
  mediarr scan --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScanCmd,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Clear and rescan every library",
	Args:  cobra.NoArgs,
	RunE:  runRefreshCmd,
}

func init() {
	rootCmd.AddCommand(librariesCmd, scanCmd, refreshCmd)
	scanCmd.Flags().Bool("quick", false, "Quick scan: new and removed files only")
	scanCmd.Flags().Bool("missing", false, "Fetch metadata for items that have none")
	scanCmd.Flags().Bool("all", false, "Quick scan every library")
	scanCmd.MarkFlagsMutuallyExclusive("quick", "missing", "all")
}

func runLibrariesCmd(cmd *cobra.Command, _ []string) error {
	libs, err := NewClient(serverURL).Libraries()
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), libs)
	}
	printLibraries(cmd.OutOrStdout(), libs)
	return nil
}

func printLibraries(w io.Writer, libs *ListLibrariesResponse) {
	if libs.Total == 0 {
		fmt.Fprintln(w, "No libraries configured.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSERIES\tEPISODES\tMOVIES\tPATH")
	for _, l := range libs.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n", l.ID, l.Name, l.Type, l.Series, l.Episodes, l.Movies, l.Path)
	}
	_ = tw.Flush()
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	quick, _ := cmd.Flags().GetBool("quick")
	missing, _ := cmd.Flags().GetBool("missing")
	all, _ := cmd.Flags().GetBool("all")
	client := NewClient(serverURL)
	out := cmd.OutOrStdout()

	if all {
		if len(args) > 0 {
			return fmt.Errorf("--all takes no library ID")
		}
		res, err := client.ScanAll()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, res)
		}
		fmt.Fprintf(out, "Quick scan of all libraries: %d added, %d removed\n", res.FilesAdded, res.FilesRemoved)
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("requires a library ID or --all")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	switch {
	case quick:
		res, err := client.QuickScan(id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, res)
		}
		fmt.Fprintf(out, "Quick scan of library %d: %d added, %d removed\n", id, res.FilesAdded, res.FilesRemoved)
	case missing:
		res, err := client.ScanMissing(id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, res)
		}
		fmt.Fprintf(out, "Missing metadata in library %d: %d/%d series, %d/%d movies updated\n",
			id, res.SeriesUpdated, res.SeriesScanned, res.MoviesUpdated, res.MoviesScanned)
	default:
		res, err := client.Scan(id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, res)
		}
		fmt.Fprintf(out, "Scan of library %d: %d series added, %d reused, %d episodes, %d movies\n",
			id, res.SeriesAdded, res.SeriesReused, res.EpisodesAdded, res.MoviesAdded)
	}
	return nil
}

func runRefreshCmd(cmd *cobra.Command, _ []string) error {
	res, err := NewClient(serverURL).Refresh()
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Refresh: %d series added, %d episodes, %d movies\n",
		res.SeriesAdded, res.EpisodesAdded, res.MoviesAdded)
	return nil
}
