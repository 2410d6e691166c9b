package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// TotalFiles is the number of files scheduled for download.
	TotalFiles int

	// ScriptName is the manifest script being processed (for display).
	ScriptName string

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter outputs human-readable download progress. Its counters are safe
// to update from concurrent fetch workers.
type Reporter struct {
	opts Options

	mu             sync.Mutex
	completedFiles atomic.Int32
	completedBytes atomic.Int64
	startTime      time.Time
	stopCh         chan struct{}
	doneCh         chan struct{}
	started        bool
	stopped        bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.mu.Lock()
	r.started = true
	r.startTime = time.Now()
	r.mu.Unlock()

	fmt.Fprintf(r.opts.Output, "[fuxi] Fetching %d files from %s\n",
		r.opts.TotalFiles, r.opts.ScriptName)

	go r.updateLoop()
}

// Stop stops the progress reporter and prints the final status line. It
// returns once the display goroutine has exited.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	started := r.started
	r.mu.Unlock()

	close(r.stopCh)
	if started {
		<-r.doneCh
	}
}

// FileCompleted records one finished download of the given size.
func (r *Reporter) FileCompleted(size int64) {
	r.completedFiles.Add(1)
	r.completedBytes.Add(size)
}

// Completed returns the number of files recorded so far.
func (r *Reporter) Completed() int {
	return int(r.completedFiles.Load())
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printStatus("\n")
			return
		case <-ticker.C:
			r.printStatus("")
		}
	}
}

// printStatus outputs the current progress on a single rewritten line.
func (r *Reporter) printStatus(tail string) {
	fmt.Fprintf(r.opts.Output, "\r[fuxi] Files: %d/%d | %s downloaded | elapsed: %s    %s",
		r.completedFiles.Load(),
		r.opts.TotalFiles,
		formatBytes(r.completedBytes.Load()),
		formatDuration(time.Since(r.startTime)),
		tail,
	)
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
