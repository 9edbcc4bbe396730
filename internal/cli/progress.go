package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// Progress wraps a progress bar so it can be driven by done/total callbacks.
type Progress struct {
	bar  *progressbar.ProgressBar
	w    io.Writer
	done int
}

// NewProgress creates a bar over total items.
func NewProgress(w io.Writer, total int, description string) *Progress {
	p := &Progress{w: w}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
	return p
}

// Update moves the bar to done. It matches the engine's progress callback.
func (p *Progress) Update(done, total int) {
	if total != p.bar.GetMax() {
		p.bar.ChangeMax(total)
	}
	if done <= p.done {
		return
	}
	if err := p.bar.Add(done - p.done); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
	p.done = done
}

// Done reports how many items have been counted so far.
func (p *Progress) Done() int {
	return p.done
}

// Finish completes the bar.
func (p *Progress) Finish() {
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}
