package repos

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/temirov/multigit/internal/batch"
)

const (
	indeterminateProgressTotalConstant = -1
	progressDescriptionConstant        = "repositories"
	progressThrottleConstant           = 65 * time.Millisecond
)

type fileDescriptorWriter interface {
	io.Writer
	Fd() uintptr
}

// progressBarTracker advances a progress bar as repositories finish.
type progressBarTracker struct {
	bar *progressbar.ProgressBar
}

// newProgressTracker returns nil unless progress was requested and writer is a terminal.
func newProgressTracker(enabled bool, writer io.Writer, total int) batch.ProgressTracker {
	if !enabled {
		return nil
	}
	terminalWriter, hasDescriptor := writer.(fileDescriptorWriter)
	if !hasDescriptor || !term.IsTerminal(int(terminalWriter.Fd())) {
		return nil
	}
	return newProgressBarTracker(writer, total)
}

func newProgressBarTracker(writer io.Writer, total int) *progressBarTracker {
	return &progressBarTracker{bar: progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription(progressDescriptionConstant),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionThrottle(progressThrottleConstant),
	)}
}

// RepositoryFinished implements batch.ProgressTracker.
func (tracker *progressBarTracker) RepositoryFinished(batch.Outcome) {
	_ = tracker.bar.Add(1)
}

// Finish implements batch.ProgressTracker.
func (tracker *progressBarTracker) Finish() {
	_ = tracker.bar.Finish()
}
