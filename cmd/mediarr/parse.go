package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/pkg/release"
)

// ParseResult is what the scanner would derive from one name.
type ParseResult struct {
	Input      string           `json:"input"`
	Episode    *release.Episode `json:"episode,omitempty"`
	Movie      *release.Movie   `json:"movie,omitempty"`
	Folder     string           `json:"folder"`
	FolderYear int              `json:"folder_year,omitempty"`
	Special    bool             `json:"special,omitempty"`
	Class      string           `json:"class"`
}

var parseCmd = &cobra.Command{
	Use:   "parse <filename>...",
	Short: "Parse media file or folder names (local, no server needed)",
	Long: `Show how the scanner reads a file or folder name: the episode or
movie identity, the cleaned folder title and year, and the
classification used to pick the metadata providers.

Examples:
  mediarr parse "[SubsPlease] Frieren - 07 [1080p].mkv"
  mediarr parse --movie "The Matrix (1999).mkv"
  mediarr parse --file names.txt`,
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().Bool("movie", false, "Parse as a movie library entry")
	parseCmd.Flags().StringP("file", "f", "", "Read names from a file, one per line")
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	movie, _ := cmd.Flags().GetBool("movie")
	file, _ := cmd.Flags().GetString("file")

	names := args
	if file != "" {
		fromFile, err := readNameFile(file)
		if err != nil {
			return err
		}
		names = append(names, fromFile...)
	}
	if len(names) == 0 {
		return fmt.Errorf("requires at least one name or --file")
	}

	results := make([]ParseResult, 0, len(names))
	for _, name := range names {
		results = append(results, parseName(name, movie))
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, results)
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printParseResult(out, r)
	}
	return nil
}

func parseName(name string, movie bool) ParseResult {
	base := filepath.Base(name)
	folder, year := release.ExtractYear(base)
	r := ParseResult{
		Input:      name,
		Folder:     folder,
		FolderYear: year,
		Special:    release.IsSpecialFolder(base),
		Class:      release.Classify(base, movie).String(),
	}
	if movie {
		m := release.ParseMovie(base)
		r.Movie = &m
		return r
	}
	if ep, ok := release.ParseEpisode(base); ok {
		r.Episode = ep
	}
	return r
}

func printParseResult(w io.Writer, r ParseResult) {
	fmt.Fprintf(w, "Input:    %s\n", r.Input)
	switch {
	case r.Episode != nil:
		fmt.Fprintf(w, "Episode:  %s S%02dE%02d\n", r.Episode.ShowName, r.Episode.Season, r.Episode.Episode)
	case r.Movie != nil:
		if r.Movie.Year > 0 {
			fmt.Fprintf(w, "Movie:    %s (%d)\n", r.Movie.Title, r.Movie.Year)
		} else {
			fmt.Fprintf(w, "Movie:    %s\n", r.Movie.Title)
		}
	default:
		fmt.Fprintln(w, "Episode:  -")
	}
	if r.FolderYear > 0 {
		fmt.Fprintf(w, "Folder:   %s (%d)\n", r.Folder, r.FolderYear)
	} else {
		fmt.Fprintf(w, "Folder:   %s\n", r.Folder)
	}
	fmt.Fprintf(w, "Class:    %s\n", r.Class)
	if r.Special {
		fmt.Fprintln(w, "Special:  yes (skipped by the scanner)")
	}
}

// readNameFile reads names from a file, skipping blank lines and # comments.
func readNameFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, scanner.Err()
}
