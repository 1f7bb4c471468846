package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/toolbelt/internal/httpx"
	"github.com/idelchi/toolbelt/internal/scrape"
)

// httpFetcher adapts httpx.Client to the scraper's Fetcher capability.
type httpFetcher struct {
	client *httpx.Client
}

func (f httpFetcher) Get(ctx context.Context, rawURL string) (scrape.Response, error) {
	resp, err := f.client.Get(ctx, rawURL)
	if err != nil {
		return scrape.Response{}, err
	}

	return scrape.Response{Status: resp.Status, Body: resp.Body}, nil
}

// NewScrapeCommand builds the scrape subcommand.
func NewScrapeCommand() *cobra.Command {
	var (
		timeout  time.Duration
		retries  int
		params   map[string]string
		jsonPath string
		csvPath  string
	)

	cmd := &cobra.Command{
		Use:   "scrape URL",
		Short: "Fetch a JSON document and optionally persist it",
		Example: heredoc.Doc(`
			# Print a summary of the fetched document
			toolbelt scrape https://jsonplaceholder.typicode.com/posts

			# Persist as JSON and CSV
			toolbelt scrape --json posts.json --csv posts.csv https://jsonplaceholder.typicode.com/posts

			# With query parameters
			toolbelt scrape --param userId=1 https://jsonplaceholder.typicode.com/posts
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := httpx.New(httpx.Options{Timeout: timeout, Retries: retries})
			scraper := scrape.New(httpFetcher{client: client})

			data, err := scraper.FetchJSON(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if rows, ok := data.([]any); ok {
				fmt.Fprintf(out, "Fetched %d records\n", len(rows))

				if len(rows) > 0 {
					first, err := json.MarshalIndent(rows[0], "", "  ")
					if err == nil {
						fmt.Fprintf(out, "\nFirst record:\n%s\n", first)
					}
				}
			} else {
				document, err := json.MarshalIndent(data, "", "  ")
				if err == nil {
					fmt.Fprintf(out, "%s\n", document)
				}
			}

			if jsonPath != "" {
				if err := scrape.SaveJSON(jsonPath, data); err != nil {
					return err
				}

				fmt.Fprintf(out, "\nSaved JSON: %s\n", jsonPath)
			}

			if csvPath != "" {
				if err := scrape.SaveCSV(csvPath, data); err != nil {
					return err
				}

				fmt.Fprintf(out, "Saved CSV: %s\n", csvPath)
			}

			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", httpx.DefaultTimeout, "Request timeout")
	cmd.Flags().IntVar(&retries, "retries", 0, "Retries on transient failures")
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "Query parameters (key=value)")
	cmd.Flags().StringVar(&jsonPath, "json", "", "Write the document to this JSON file")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the document to this CSV file (arrays of objects only)")

	return cmd
}
