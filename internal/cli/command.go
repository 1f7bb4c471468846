// Package cli implements the toolbelt command tree.
package cli

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the toolbelt command tree.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "toolbelt",
		Short: "Multi-tool for directory analysis, HTTP probing, scraping and image processing",
		Long: heredoc.Doc(`
			toolbelt bundles a small set of independent utilities:

			  analyze  Scan a directory tree and report statistics by file extension,
			           optionally detecting duplicate files by content hash.
			  get      Perform a single HTTP GET and pretty-print the response.
			  check    Probe API endpoints against expected status codes.
			  scrape   Fetch a JSON document and persist it as JSON or CSV.
			  img      Resize, filter or grayscale an image.
		`),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		NewAnalyzeCommand(),
		NewGetCommand(),
		NewCheckCommand(),
		NewScrapeCommand(),
		NewImgCommand(),
	)

	return root
}

// Execute runs the CLI with the process arguments.
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}
