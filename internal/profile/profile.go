package profile

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/charlievieth/fastwalk"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// DefaultTopN is the number of top results tracked when none is requested.
const DefaultTopN = 20

// logger provides conditional debug output.
type logger struct {
	enabled bool
}

// printf prints debug output if logging is enabled.
func (l logger) printf(format string, args ...any) {
	if l.enabled {
		//nolint:forbidigo // Debug output to console
		fmt.Printf(format, args...)
	}
}

// shouldExcludeByPattern checks if path matches any exclusion regex.
func shouldExcludeByPattern(path string, patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
//
//nolint:varnamelen // c is idiomatic for collector
func startProgressReporter(ctx context.Context, c *collector, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.snapshot())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Run scans the directory tree at opt.Path and returns an aggregate Report.
//
// Every readable node below the root is visited exactly once: files are
// counted, sized and bucketed by lowercased extension, directories are
// counted, and unreadable entries increment the error count without aborting
// the scan. When opt.Duplicates is set, each file's content is hashed and
// files sharing a digest are grouped; hashing failures exclude a file from
// duplicate grouping but keep it in the size and extension aggregates.
//
// Symlinks are never followed, so cyclic links cannot cause unbounded
// traversal. Hashing runs on fastwalk's worker goroutines; the collector's
// mutex serializes all aggregate mutation, keeping counters exact regardless
// of interleaving.
//
// The walk can be cancelled via ctx. Progress updates are sent to
// progressHook if provided.
func Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Report, error) {
	log := logger{enabled: opt.Debug}

	if opt.Path == "" {
		opt.Path = "."
	}

	// Resolve to an absolute root so reported entry paths are absolute.
	root, err := filepath.Abs(filepath.Clean(opt.Path))
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	// Validate path exists and is a directory before starting; this is the
	// only error that aborts a scan outright.
	if statInfo, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", opt.Path, err)
	} else if !statInfo.IsDir() {
		return nil, fmt.Errorf("path %q is not a directory", opt.Path)
	}

	if opt.TopN <= 0 {
		opt.TopN = DefaultTopN
	}

	excludeRegexes := make([]*regexp.Regexp, 0, len(opt.Excludes))

	for _, p := range opt.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludeRegexes = append(excludeRegexes, re)
	}

	collector := newCollector()

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, collector, progressHook, opt.ProgressInterval)

	start := time.Now()

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	// Walk directory with fastwalk (parallel traversal)
	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.printf("[debug]: error accessing path %s: %v\n", path, err)
			collector.addError()

			return nil //nolint:nilerr // Unreadable entries are counted, not fatal
		}

		// Check cancellation periodically
		select {
		case <-ctx.Done():
			return context.Canceled
		default:
		}

		// The root itself is not part of its own statistics.
		if path == root {
			return nil
		}

		// Check regex exclusion patterns
		if matchedPattern := shouldExcludeByPattern(path, excludeRegexes); matchedPattern != nil {
			fPath := filepath.ToSlash(path)

			if d.IsDir() {
				log.printf("[debug]: excluding directory: %s\n", fPath)
				log.printf("	 matched regex: %s\n", matchedPattern.String())

				return filepath.SkipDir
			}

			log.printf("[debug]: excluding file: %s\n", fPath)
			log.printf("	 matched regex: %s\n", matchedPattern.String())

			return nil
		}

		if d.IsDir() {
			collector.addDir()

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			collector.addError()

			return nil //nolint:nilerr // Intentionally skip errors during walk
		}

		if fileInfo.Size() < opt.MinSize {
			log.printf("[debug]: excluding file (below min size): %s\n", path)

			return nil
		}

		// Hash on the walker goroutine; aggregation below is mutex-serialized.
		var digest string

		if opt.Duplicates {
			digest, err = HashFile(path)
			if err != nil {
				log.printf("[debug]: hashing failed for %s: %v\n", path, err)
				collector.addHashError()

				digest = ""
			}
		}

		collector.addFile(path, fileInfo.Size(), extensionOf(path), digest)

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	report := collector.finalize(opt.TopN)

	report.Elapsed = time.Since(start)

	return report, nil
}
