package profile

import (
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// NoExtension is the bucket key used for files without an extension.
const NoExtension = "no_extension"

// Entry represents a single file observed during a scan.
type Entry struct {
	// Path is the absolute file path.
	Path string `json:"path"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
}

// Report holds the aggregate result of one directory scan.
// It is immutable once returned and owned exclusively by the caller.
type Report struct {
	// TotalFiles is the number of files analyzed.
	TotalFiles int64 `json:"total_files"`
	// TotalDirs is the number of directories visited below the root.
	TotalDirs int64 `json:"total_dirs"`
	// TotalBytes is the cumulative size of all analyzed files.
	TotalBytes int64 `json:"total_bytes"`
	// ErrorCount is the number of entries skipped due to traversal errors.
	ErrorCount int64 `json:"error_count"`
	// HashErrors is the number of files that could not be hashed.
	HashErrors int64 `json:"hash_errors"`
	// Extensions maps lowercased file extensions to their entries.
	Extensions map[string][]Entry `json:"extensions"`
	// Duplicates maps content digests to the paths sharing them.
	// Only groups with at least two members are retained.
	Duplicates map[string][]string `json:"duplicates,omitempty"`
	// Elapsed is the total time taken for the scan.
	Elapsed time.Duration `json:"elapsed"`
	// TopN is the number of top results tracked for display.
	TopN int `json:"top_n"`
}

// Options configures a directory scan.
type Options struct {
	// Path is the directory to analyze.
	Path string
	// Duplicates enables duplicate detection via content hashing.
	Duplicates bool
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// MinSize is the minimum file size in bytes.
	MinSize int64
	// TopN is the number of top results to track for display.
	TopN int
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug indicates whether debug output is enabled.
	Debug bool
}

// extensionOf returns the lowercased extension bucket key for path.
// Dotfiles like .gitignore and files without a suffix map to NoExtension.
func extensionOf(path string) string {
	base := filepath.Base(path)

	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return NoExtension
	}

	return strings.ToLower(ext)
}

// collector aggregates scan results from concurrent fastwalk callbacks using a mutex.
type collector struct {
	mu         sync.Mutex // Protect concurrent access
	extensions map[string][]Entry
	duplicates map[string][]string
	fileCount  int64
	dirCount   int64
	totalBytes int64
	errorCount int64
	hashErrors int64
}

// newCollector creates an empty collector.
func newCollector() *collector {
	return &collector{
		extensions: make(map[string][]Entry),
		duplicates: make(map[string][]string),
	}
}

// addError increments the traversal error counter. This operation is protected
// by a mutex since fastwalk calls the callback from multiple goroutines concurrently.
func (c *collector) addError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorCount++
}

// addHashError increments the hashing error counter.
func (c *collector) addHashError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hashErrors++
}

// addDir records a visited directory.
func (c *collector) addDir() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirCount++
}

// addFile records a file in its extension bucket and, when digest is non-empty,
// in its duplicate bucket. Buckets are created on first key use.
func (c *collector) addFile(path string, size int64, ext, digest string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fileCount++
	c.totalBytes += size
	c.extensions[ext] = append(c.extensions[ext], Entry{Path: path, Size: size})

	if digest != "" {
		c.duplicates[digest] = append(c.duplicates[digest], path)
	}
}

// snapshot returns the current file count and byte total for progress reporting.
func (c *collector) snapshot() (files, bytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fileCount, c.totalBytes
}

// finalize produces the final Report from the collected data.
// Duplicate buckets with fewer than two members are dropped: a file is only
// duplicated when at least one other file shares its digest.
func (c *collector) finalize(topN int) *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	duplicates := make(map[string][]string)

	for digest, paths := range c.duplicates {
		if len(paths) >= 2 {
			duplicates[digest] = paths
		}
	}

	return &Report{
		TotalFiles: c.fileCount,
		TotalDirs:  c.dirCount,
		TotalBytes: c.totalBytes,
		ErrorCount: c.errorCount,
		HashErrors: c.hashErrors,
		Extensions: c.extensions,
		Duplicates: duplicates,
		TopN:       topN,
	}
}
