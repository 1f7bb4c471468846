package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/toolbelt/internal/httpx"
)

// parseCheckSpec parses a "METHOD:PATH=STATUS" argument. Method defaults to
// GET and status to 200 when omitted.
func parseCheckSpec(spec string) (httpx.Check, error) {
	check := httpx.Check{}

	rest := spec

	if method, path, found := strings.Cut(rest, ":"); found && !strings.HasPrefix(rest, "/") {
		check.Method = method
		rest = path
	}

	if path, status, found := strings.Cut(rest, "="); found {
		want, err := strconv.Atoi(status)
		if err != nil {
			return httpx.Check{}, fmt.Errorf("invalid status in check %q: %w", spec, err)
		}

		check.WantStatus = want
		rest = path
	}

	if rest == "" {
		return httpx.Check{}, fmt.Errorf("empty path in check %q", spec)
	}

	check.Path = rest

	return check, nil
}

// NewCheckCommand builds the check subcommand.
func NewCheckCommand() *cobra.Command {
	var (
		timeout time.Duration
		retries int
	)

	cmd := &cobra.Command{
		Use:   "check BASEURL CHECK...",
		Short: "Probe API endpoints against expected status codes",
		Long: heredoc.Doc(`
			check resolves each CHECK against BASEURL, performs the request and
			compares the status code against the expectation.

			A CHECK has the form [METHOD:]PATH[=STATUS], defaulting to GET and 200.
		`),
		Example: heredoc.Doc(`
			toolbelt check https://jsonplaceholder.typicode.com /posts /posts/1

			# Expect a created resource and a missing one
			toolbelt check https://api.example.com POST:/items=201 /items/none=404
		`),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			checks := make([]httpx.Check, 0, len(args)-1)

			for _, spec := range args[1:] {
				check, err := parseCheckSpec(spec)
				if err != nil {
					return err
				}

				checks = append(checks, check)
			}

			client := httpx.New(httpx.Options{Timeout: timeout, Retries: retries})

			results, err := client.RunChecks(cmd.Context(), args[0], checks)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			passed := 0

			for _, result := range results {
				switch {
				case result.Err != nil:
					fmt.Fprintf(out, "ERROR %s %s: %v\n", result.Method, result.Path, result.Err)
				case result.Passed:
					passed++

					fmt.Fprintf(out, "PASS  %s %s (%d)\n", result.Method, result.Path, result.Status)
				default:
					fmt.Fprintf(out, "FAIL  %s %s: expected %d, got %d\n",
						result.Method, result.Path, result.WantStatus, result.Status)
				}
			}

			fmt.Fprintf(out, "\n%d/%d checks passed\n", passed, len(results))

			if passed != len(results) {
				return fmt.Errorf("%d of %d checks failed", len(results)-passed, len(results))
			}

			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", httpx.DefaultTimeout, "Request timeout")
	cmd.Flags().IntVar(&retries, "retries", 0, "Retries on transient failures")

	return cmd
}
