package profile

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files under dir, keyed by relative path. Parent
// directories are created as needed.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestRun_Statistics(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.txt":        "X",
		"b.txt":        "X",
		"c.txt":        "Y",
		"sub/d.log":    "hello",
		"sub/Makefile": "all:",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub", "empty"), 0o755))

	report, err := Run(context.Background(), Options{Path: dir}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(5), report.TotalFiles)
	assert.Equal(t, int64(2), report.TotalDirs)
	assert.Equal(t, int64(12), report.TotalBytes)
	assert.Equal(t, int64(0), report.ErrorCount)
	assert.Empty(t, report.Duplicates)

	assert.Len(t, report.Extensions[".txt"], 3)
	assert.Len(t, report.Extensions[".log"], 1)
	assert.Len(t, report.Extensions[NoExtension], 1)

	// Total size equals the sum over all extension bucket entries.
	var sum int64

	for _, entries := range report.Extensions {
		for _, entry := range entries {
			assert.True(t, filepath.IsAbs(entry.Path))
			sum += entry.Size
		}
	}

	assert.Equal(t, report.TotalBytes, sum)
}

func TestRun_Duplicates(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.txt":     "X",
		"b.txt":     "X",
		"c.txt":     "Y",
		"sub/d.bin": "unique content",
	})

	report, err := Run(context.Background(), Options{Path: dir, Duplicates: true}, nil)
	require.NoError(t, err)

	// Exactly one group: the two files sharing content "X". Unique files
	// never appear in any group.
	require.Len(t, report.Duplicates, 1)

	digest, err := HashFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)

	paths := report.Duplicates[digest]
	sort.Strings(paths)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
	}, paths)

	// Duplicate detection does not perturb the aggregates.
	assert.Equal(t, int64(4), report.TotalFiles)
	assert.Equal(t, int64(17), report.TotalBytes)
	assert.Equal(t, int64(0), report.HashErrors)
}

// sortedExtensions returns the extension buckets with entries sorted by path,
// for order-insensitive comparison.
func sortedExtensions(report *Report) map[string][]Entry {
	out := make(map[string][]Entry, len(report.Extensions))

	for ext, entries := range report.Extensions {
		sorted := make([]Entry, len(entries))
		copy(sorted, entries)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
		out[ext] = sorted
	}

	return out
}

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.txt":    "X",
		"b.txt":    "X",
		"sub/c.md": "# heading",
		"Makefile": "all:",
	})

	first, err := Run(context.Background(), Options{Path: dir, Duplicates: true}, nil)
	require.NoError(t, err)

	second, err := Run(context.Background(), Options{Path: dir, Duplicates: true}, nil)
	require.NoError(t, err)

	assert.Equal(t, first.TotalFiles, second.TotalFiles)
	assert.Equal(t, first.TotalDirs, second.TotalDirs)
	assert.Equal(t, first.TotalBytes, second.TotalBytes)
	assert.Equal(t, first.ErrorCount, second.ErrorCount)
	assert.Equal(t, sortedExtensions(first), sortedExtensions(second))

	require.Equal(t, len(first.Duplicates), len(second.Duplicates))

	for digest, paths := range first.Duplicates {
		sort.Strings(paths)

		other := second.Duplicates[digest]
		sort.Strings(other)

		assert.Equal(t, paths, other)
	}
}

func TestRun_RootValidation(t *testing.T) {
	t.Run("missing_root_fails_fast", func(t *testing.T) {
		_, err := Run(context.Background(), Options{Path: filepath.Join(t.TempDir(), "nope")}, nil)
		require.Error(t, err)
		assert.ErrorContains(t, err, "accessing path")
	})

	t.Run("file_root_fails_fast", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"plain.txt": "data"})

		_, err := Run(context.Background(), Options{Path: filepath.Join(dir, "plain.txt")}, nil)
		require.Error(t, err)
		assert.ErrorContains(t, err, "not a directory")
	})
}

func TestRun_MinSize(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"small.txt": "ab",
		"large.txt": "abcdefghij",
	})

	report, err := Run(context.Background(), Options{Path: dir, MinSize: 5}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.TotalFiles)
	assert.Equal(t, int64(10), report.TotalBytes)
}

func TestRun_Excludes(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"keep.txt":              "data",
		"node_modules/dep.js":   "module.exports = {}",
		"node_modules/other.js": "module.exports = {}",
	})

	report, err := Run(context.Background(), Options{
		Path:     dir,
		Excludes: []string{`.*node_modules.*`},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.TotalFiles)
	assert.Equal(t, int64(0), report.TotalDirs)
	assert.Len(t, report.Extensions, 1)
}

func TestRun_InvalidExcludePattern(t *testing.T) {
	_, err := Run(context.Background(), Options{Path: t.TempDir(), Excludes: []string{`[`}}, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "compiling exclusion pattern")
}

func TestRun_UnreadableDirCounted(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}

	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"ok.txt":            "fine",
		"locked/hidden.txt": "secret",
	})

	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))

	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	report, err := Run(context.Background(), Options{Path: dir}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.TotalFiles)
	assert.GreaterOrEqual(t, report.ErrorCount, int64(1))
}

func TestRun_HashFailureKeepsAggregates(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}

	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.txt":      "same",
		"b.txt":      "same",
		"locked.txt": "same",
	})

	require.NoError(t, os.Chmod(filepath.Join(dir, "locked.txt"), 0o000))

	report, err := Run(context.Background(), Options{Path: dir, Duplicates: true}, nil)
	require.NoError(t, err)

	// The unreadable file still counts toward size and extension totals but
	// is excluded from duplicate grouping.
	assert.Equal(t, int64(3), report.TotalFiles)
	assert.Equal(t, int64(12), report.TotalBytes)
	assert.Equal(t, int64(1), report.HashErrors)

	require.Len(t, report.Duplicates, 1)

	for _, paths := range report.Duplicates {
		assert.Len(t, paths, 2)
	}
}

func TestRun_SymlinkCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"sub/file.txt": "data"})

	require.NoError(t, os.Symlink(filepath.Join(dir, "sub"), filepath.Join(dir, "sub", "loop")))

	report, err := Run(context.Background(), Options{Path: dir}, nil)
	require.NoError(t, err)

	// The symlinked directory is not followed, so the file is seen once.
	assert.Equal(t, int64(1), report.TotalFiles)
	assert.Equal(t, int64(1), report.TotalDirs)
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "X"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{Path: dir}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_EmptyPathDefaultsToCwd(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "X"})

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(cwd)) })

	report, err := Run(context.Background(), Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.TotalFiles)
}
