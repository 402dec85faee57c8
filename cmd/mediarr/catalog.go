package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query the offline anime catalog (local, no server needed)",
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search the catalog",
	Long: `Search the offline anime catalog the way the scanner does and show
each candidate with its score. The dataset is downloaded into the
cache directory on first use.

Examples:
  mediarr catalog search "Sousou no Frieren"
  mediarr catalog search --year 2009 "Fullmetal Alchemist"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCatalogSearch,
}

var catalogUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Re-download the catalog dataset",
	Args:  cobra.NoArgs,
	RunE:  runCatalogUpdate,
}

// catalogURL overrides the dataset URL; tests point it at a local server.
var catalogURL string

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogSearchCmd, catalogUpdateCmd)
	catalogSearchCmd.Flags().IntP("year", "y", 0, "Release year hint")
	catalogSearchCmd.Flags().IntP("limit", "n", 10, "Maximum results to show")
}

func openCatalog(cmd *cobra.Command) (*catalog.DB, error) {
	cfg, err := loadLocalConfig()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	opts := []catalog.Option{catalog.WithLogger(logger)}
	if catalogURL != "" {
		opts = append(opts, catalog.WithURL(catalogURL))
	}
	return catalog.New(cfg.Paths.CacheDir, opts...), nil
}

// CatalogResult is one search hit.
type CatalogResult struct {
	Title    string  `json:"title"`
	Year     int     `json:"year,omitempty"`
	Type     string  `json:"type"`
	Episodes int     `json:"episodes"`
	Score    float64 `json:"score"`
	AniList  int64   `json:"anilist_id,omitempty"`
	AniDB    int64   `json:"anidb_id,omitempty"`
	MAL      int64   `json:"mal_id,omitempty"`
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")
	limit, _ := cmd.Flags().GetInt("limit")

	db, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	matches, err := db.Search(cmd.Context(), strings.Join(args, " "), year)
	if err != nil {
		return fmt.Errorf("catalog search: %w", err)
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]CatalogResult, 0, len(matches))
	for _, m := range matches {
		ids := m.Entry.ProviderIDs()
		results = append(results, CatalogResult{
			Title:    m.Entry.Title,
			Year:     m.Entry.Year(),
			Type:     m.Entry.Type,
			Episodes: m.Entry.Episodes,
			Score:    m.Score,
			AniList:  ids.AniList,
			AniDB:    ids.AniDB,
			MAL:      ids.MAL,
		})
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, results)
	}
	printCatalogResults(out, results)
	return nil
}

func printCatalogResults(w io.Writer, results []CatalogResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No matches.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "SCORE\tTITLE\tYEAR\tTYPE\tEPS\tANILIST\tANIDB\tMAL")
	for _, r := range results {
		fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.Score, r.Title, orDash(int64(r.Year)), r.Type, r.Episodes,
			orDash(r.AniList), orDash(r.AniDB), orDash(r.MAL))
	}
	_ = tw.Flush()
}

func orDash(n int64) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprint(n)
}

func runCatalogUpdate(cmd *cobra.Command, _ []string) error {
	db, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	if err := db.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("catalog update: %w", err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]int{"entries": db.Len()})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Catalog updated: %d entries\n", db.Len())
	return nil
}
