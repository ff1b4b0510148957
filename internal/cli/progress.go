package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressReporter renders a progress bar while extracting many packages.
type ProgressReporter struct {
	quiet     bool
	bar       *progressbar.ProgressBar
	startTime time.Time
}

// NewProgressReporter creates a progress reporter. quiet suppresses all
// output, including the completion summary.
func NewProgressReporter(quiet bool) *ProgressReporter {
	return &ProgressReporter{
		quiet:     quiet,
		startTime: time.Now(),
	}
}

func (p *ProgressReporter) OnStart(totalPackages int) {
	if p.quiet {
		return
	}
	// Manifests go to stdout; progress must stay off it.
	p.bar = progressbar.NewOptions(totalPackages,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Extracting packages"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("pkgs/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

func (p *ProgressReporter) OnPackageDone(dir string) {
	if p.quiet || p.bar == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("Extracting %s", filepath.Base(dir)))
	p.bar.Add(1)
}

func (p *ProgressReporter) OnComplete(extracted int) {
	if p.quiet {
		return
	}
	if p.bar != nil {
		p.bar.Finish()
	}
	fmt.Fprintf(os.Stderr, "✓ Extracted %d packages in %.1fs\n", extracted, time.Since(p.startTime).Seconds())
}
