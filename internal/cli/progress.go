package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

// scanBar renders an indeterminate spinner on stderr while a scan runs.
type scanBar struct {
	bar *progressbar.ProgressBar
}

// newScanBar creates a spinner describing scan progress.
func newScanBar() *scanBar {
	bar := progressbar.NewOptions64(
		-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(120*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	return &scanBar{bar: bar}
}

// update refreshes the spinner description with the running totals.
func (s *scanBar) update(files, bytes int64) {
	s.bar.Describe(fmt.Sprintf("scanning… %d files, %s",
		files, humanize.IBytes(uint64(bytes)))) //nolint:gosec // Bytes is always positive
	_ = s.bar.Add(1)
}

// close finishes and clears the spinner.
func (s *scanBar) close() {
	_ = s.bar.Finish()
}
