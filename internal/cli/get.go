package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/idelchi/toolbelt/internal/httpx"
)

// bodyPreviewLimit caps how much of a response body is printed.
const bodyPreviewLimit = 500

// NewGetCommand builds the get subcommand.
func NewGetCommand() *cobra.Command {
	var (
		timeout time.Duration
		retries int
		headers map[string]string
	)

	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "Perform a single HTTP GET and print the response",
		Example: heredoc.Doc(`
			# Fetch a JSON resource
			toolbelt get https://jsonplaceholder.typicode.com/posts/1

			# With a custom header and timeout
			toolbelt get --header Accept=application/json --timeout 5s https://example.com
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := httpx.New(httpx.Options{Timeout: timeout, Retries: retries})

			resp, err := client.Do(cmd.Context(), "GET", args[0], headers, nil)
			if err != nil {
				return err
			}

			printResponse(cmd.OutOrStdout(), "GET", args[0], resp)

			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", httpx.DefaultTimeout, "Request timeout")
	cmd.Flags().IntVar(&retries, "retries", 0, "Retries on transient failures")
	cmd.Flags().StringToStringVarP(&headers, "header", "H", nil, "Extra request headers (key=value)")

	return cmd
}

// printResponse renders status, timing, size and a body preview.
func printResponse(out io.Writer, method, url string, resp *httpx.Response) {
	fmt.Fprintf(out, "%s %s\n", method, url)
	fmt.Fprintf(out, "Status: %d\n", resp.Status)
	fmt.Fprintf(out, "Elapsed: %v\n", resp.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "Size: %s (%d bytes)\n", humanize.IBytes(uint64(len(resp.Body))), len(resp.Body))

	if contentType := resp.Headers.Get("Content-Type"); contentType != "" {
		fmt.Fprintf(out, "Content-Type: %s\n", contentType)
	}

	preview := resp.Body

	if resp.IsJSON() {
		var indented bytes.Buffer
		if err := json.Indent(&indented, resp.Body, "", "  "); err == nil {
			preview = indented.Bytes()
		}
	}

	if len(preview) > bodyPreviewLimit {
		preview = append(preview[:bodyPreviewLimit:bodyPreviewLimit], []byte("…")...)
	}

	fmt.Fprintf(out, "\n%s\n", preview)
}
