package profile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionOf(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"regular", "/tmp/report.txt", ".txt"},
		{"uppercase_lowered", "/tmp/README.TXT", ".txt"},
		{"double_suffix_uses_last", "/tmp/archive.tar.gz", ".gz"},
		{"extensionless", "/tmp/Makefile", NoExtension},
		{"dotfile", "/tmp/.gitignore", NoExtension},
		{"dotfile_with_suffix", "/tmp/.config.yaml", ".yaml"},
		{"trailing_dot", "/tmp/weird.", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extensionOf(tt.path))
		})
	}
}

func TestCollector_Finalize_DropsSingletonGroups(t *testing.T) {
	c := newCollector()

	c.addFile("/a", 1, ".txt", "digest-shared")
	c.addFile("/b", 1, ".txt", "digest-shared")
	c.addFile("/c", 1, ".txt", "digest-unique")
	c.addFile("/d", 1, ".txt", "")

	report := c.finalize(10)

	require.Len(t, report.Duplicates, 1)
	assert.ElementsMatch(t, []string{"/a", "/b"}, report.Duplicates["digest-shared"])
	assert.NotContains(t, report.Duplicates, "digest-unique")
}

func TestCollector_ConcurrentAggregation(t *testing.T) {
	c := newCollector()

	const (
		workers = 8
		perW    = 250
	)

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := 0; i < perW; i++ {
				c.addFile("/f", 2, ".txt", "")
				c.addDir()
				c.addError()
				c.addHashError()
			}
		}()
	}

	wg.Wait()

	report := c.finalize(10)

	assert.Equal(t, int64(workers*perW), report.TotalFiles)
	assert.Equal(t, int64(workers*perW), report.TotalDirs)
	assert.Equal(t, int64(workers*perW), report.ErrorCount)
	assert.Equal(t, int64(workers*perW), report.HashErrors)
	assert.Equal(t, int64(2*workers*perW), report.TotalBytes)
	assert.Len(t, report.Extensions[".txt"], workers*perW)
}

func TestStartProgressReporter(t *testing.T) {
	c := newCollector()
	c.addFile("/a", 42, ".txt", "")

	type snapshot struct{ files, bytes int64 }

	got := make(chan snapshot, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startProgressReporter(ctx, c, func(files, bytes int64) {
		select {
		case got <- snapshot{files, bytes}:
		default:
		}
	}, time.Millisecond)

	select {
	case snap := <-got:
		assert.Equal(t, int64(1), snap.files)
		assert.Equal(t, int64(42), snap.bytes)
	case <-time.After(time.Second):
		t.Fatal("progress hook never invoked")
	}
}
