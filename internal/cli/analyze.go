package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/idelchi/toolbelt/internal/profile"
)

// DefaultExcludes contains the default exclusion patterns.
//
//nolint:gochecknoglobals // Config constant
var DefaultExcludes = []string{`.*\.git/.*`, `.*node_modules/.*`}

// NewAnalyzeCommand builds the analyze subcommand.
func NewAnalyzeCommand() *cobra.Command {
	var (
		options    profile.Options
		minSizeStr string
		output     string
	)

	allowedOutputs := []string{"table", "json"}

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Scan a directory tree and report statistics",
		Long: heredoc.Doc(`
			analyze walks a directory tree and reports file and directory counts,
			total size, and a per-extension breakdown. With --duplicates, file
			contents are hashed and files sharing a digest are grouped.

			Unreadable entries are counted and skipped; only an invalid root
			aborts the scan.
		`),
		Example: heredoc.Doc(`
			# Analyze the current directory
			toolbelt analyze

			# Find duplicate files under ~/Downloads, JSON output
			toolbelt analyze --duplicates --output json ~/Downloads

			# Only consider files of at least 1 MiB
			toolbelt analyze --min-size 1MiB /var/log
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				options.Path = args[0]
			} else {
				options.Path = "."
			}

			if !slices.Contains(allowedOutputs, strings.ToLower(output)) {
				return fmt.Errorf("invalid output format %q: must be one of %v", output, allowedOutputs)
			}

			// Parse minSize string to bytes
			if minSizeStr != "" {
				size, err := humanize.ParseBytes(minSizeStr)
				if err != nil {
					return fmt.Errorf("invalid min-size: %w", err)
				}

				options.MinSize = int64(size) //nolint:gosec // Size conversion from humanize is safe
			}

			return runAnalyze(cmd.Context(), options, strings.ToLower(output), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&options.Duplicates, "duplicates", "D", false, "Detect duplicate files by content hash")
	cmd.Flags().StringSliceVarP(&options.Excludes, "exclude", "e", DefaultExcludes, "Regex patterns to exclude")
	cmd.Flags().StringVar(&minSizeStr, "min-size", "0B", "Minimum file size (e.g., 1KB)")
	cmd.Flags().IntVarP(&options.TopN, "top", "t", 10, "Number of top extensions and groups to display")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: json or table")
	cmd.Flags().BoolVar(&options.Debug, "debug", false, "Enable debug output")
	cmd.Flags().SortFlags = false

	return cmd
}

// runAnalyze performs the scan and renders the report. Progress is shown on a
// terminal only, and never when emitting JSON.
func runAnalyze(ctx context.Context, options profile.Options, output string, out io.Writer) error {
	enableProgress := output != "json" &&
		!options.Debug &&
		isatty.IsTerminal(os.Stderr.Fd())

	var progressHook func(files, bytes int64)

	var bar *scanBar

	if enableProgress {
		bar = newScanBar()
		progressHook = bar.update
	}

	report, err := profile.Run(ctx, options, progressHook)

	if bar != nil {
		bar.close()
	}

	if err != nil {
		return err
	}

	switch output {
	case "json":
		return PrintJSON(report, out)
	default:
		return PrintTable(report, out)
	}
}
