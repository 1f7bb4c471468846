package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/toolbelt/internal/profile"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2

	// digestDisplayLen is the number of digest characters shown per group.
	digestDisplayLen = 12
)

// PrintJSON outputs the report in JSON format.
func PrintJSON(report *profile.Report, writer io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// extSummary is one row of the per-extension table.
type extSummary struct {
	ext   string
	count int
	size  int64
}

// summarizeExtensions folds the extension buckets into per-extension totals,
// sorted by cumulative size (smallest first).
func summarizeExtensions(report *profile.Report) []extSummary {
	summaries := make([]extSummary, 0, len(report.Extensions))

	for ext, entries := range report.Extensions {
		var size int64
		for _, entry := range entries {
			size += entry.Size
		}

		summaries = append(summaries, extSummary{ext: ext, count: len(entries), size: size})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].size != summaries[j].size {
			return summaries[i].size < summaries[j].size
		}

		return summaries[i].ext < summaries[j].ext
	})

	return summaries
}

// sortedDuplicateDigests orders duplicate groups largest first, breaking ties
// by digest for stable output.
func sortedDuplicateDigests(report *profile.Report) []string {
	digests := make([]string, 0, len(report.Duplicates))
	for digest := range report.Duplicates {
		digests = append(digests, digest)
	}

	sort.Slice(digests, func(i, j int) bool {
		ni, nj := len(report.Duplicates[digests[i]]), len(report.Duplicates[digests[j]])
		if ni != nj {
			return ni > nj
		}

		return digests[i] < digests[j]
	})

	return digests
}

// PrintTable outputs the report in human-readable table format.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTable(report *profile.Report, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	// Extension statistics
	fmt.Fprintln(w, "\nTop extensions:\t\t")

	summaries := summarizeExtensions(report)

	startIdx := 0
	if len(summaries) > report.TopN {
		startIdx = len(summaries) - report.TopN
	}

	displayList := summaries[startIdx:]
	for i, summary := range displayList {
		pct := 0.0
		if report.TotalBytes > 0 {
			pct = 100.0 * float64(summary.size) / float64(report.TotalBytes)
		}

		fmt.Fprintf(w, "  %d) %s:\t%d files, %s (%.1f%%)\n",
			len(displayList)-i, summary.ext, summary.count, humanize.IBytes(uint64(summary.size)), pct)
	}

	// Duplicate groups
	if len(report.Duplicates) > 0 {
		fmt.Fprintf(w, "\nDuplicate groups (%d):\t\t\n", len(report.Duplicates))

		digests := sortedDuplicateDigests(report)
		if len(digests) > report.TopN {
			digests = digests[:report.TopN]
		}

		for i, digest := range digests {
			paths := report.Duplicates[digest]
			fmt.Fprintf(w, "  %d) %s:\t%d files\n", i+1, digest[:digestDisplayLen], len(paths))

			for _, path := range paths {
				fmt.Fprintf(w, "     - %s\t\n", path)
			}
		}
	}

	// Stats summary
	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Total files:\t%d\n", report.TotalFiles)
	fmt.Fprintf(w, "Total directories:\t%d\n", report.TotalDirs)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(report.TotalBytes)), report.TotalBytes)

	if report.ErrorCount > 0 {
		fmt.Fprintf(w, "Errors:\t%d\n", report.ErrorCount)
	}

	if report.HashErrors > 0 {
		fmt.Fprintf(w, "Hash errors:\t%d\n", report.HashErrors)
	}

	fmt.Fprintf(w, "\nElapsed:\t%v\n", report.Elapsed)

	return w.Flush()
}
