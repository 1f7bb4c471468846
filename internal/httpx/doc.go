// Package httpx provides the HTTP client capability used by the get, check
// and scrape commands: a thin wrapper over net/http with a default timeout,
// retry on transient failures, and per-request history.
package httpx
