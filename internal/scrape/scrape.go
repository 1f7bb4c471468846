// Package scrape fetches JSON documents from web APIs and persists them as
// JSON or CSV files. The HTTP capability is injected at construction.
package scrape

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
)

// Fetcher is the HTTP capability the scraper depends on.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (Response, error)
}

// Response is the subset of an HTTP response the scraper consumes.
type Response struct {
	Status int
	Body   []byte
}

// Scraper fetches JSON documents via an injected Fetcher.
type Scraper struct {
	fetcher Fetcher
}

// New creates a Scraper using fetcher for transport.
func New(fetcher Fetcher) *Scraper {
	return &Scraper{fetcher: fetcher}
}

// FetchJSON retrieves rawURL with the given query parameters and decodes the
// body as JSON. Numbers are decoded as json.Number so they render without
// float formatting artifacts. A non-200 status is an error.
func (s *Scraper) FetchJSON(ctx context.Context, rawURL string, params map[string]string) (any, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}

	if len(params) > 0 {
		query := target.Query()
		for key, value := range params {
			query.Set(key, value)
		}

		target.RawQuery = query.Encode()
	}

	resp, err := s.fetcher.Get(ctx, target.String())
	if err != nil {
		return nil, err
	}

	if resp.Status != 200 {
		return nil, fmt.Errorf("fetching %q: unexpected status %d", target.String(), resp.Status)
	}

	decoder := json.NewDecoder(bytes.NewReader(resp.Body))
	decoder.UseNumber()

	var data any
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding JSON from %q: %w", target.String(), err)
	}

	return data, nil
}

// SaveJSON writes v to path as indented JSON.
func SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}

	return nil
}

// SaveCSV writes v to path as CSV. v must be an array of flat JSON objects;
// the header row is the sorted key set of the first object, and missing keys
// render as empty cells.
func SaveCSV(path string, v any) error {
	rows, ok := v.([]any)
	if !ok {
		return fmt.Errorf("CSV export requires a JSON array, got %T", v)
	}

	if len(rows) == 0 {
		return fmt.Errorf("CSV export requires a non-empty JSON array")
	}

	first, ok := rows[0].(map[string]any)
	if !ok {
		return fmt.Errorf("CSV export requires an array of objects, got array of %T", rows[0])
	}

	header := make([]string, 0, len(first))
	for key := range first {
		header = append(header, key)
	}

	sort.Strings(header)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, row := range rows {
		obj, ok := row.(map[string]any)
		if !ok {
			return fmt.Errorf("CSV export requires an array of objects, got element of %T", row)
		}

		record := make([]string, len(header))

		for i, key := range header {
			if value, ok := obj[key]; ok && value != nil {
				record[i] = fmt.Sprint(value)
			}
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}

	return nil
}
