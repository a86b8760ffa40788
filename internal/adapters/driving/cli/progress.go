package cli

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// progressEnabled reports whether stderr is a terminal.
var progressEnabled = func() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// newProgress returns a callback that drives a progress bar on w, created
// on the first call once the total is known. It returns nil when progress
// output is disabled.
func newProgress(w io.Writer, description string) (update func(done, total int), finish func()) {
	if !progressEnabled() {
		return nil, func() {}
	}

	var bar *progressbar.ProgressBar
	update = func(done, total int) {
		if total <= 0 {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription(description),
				progressbar.OptionSetWidth(32),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "=",
					SaucerHead:    ">",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)
		}
		_ = bar.Set(done)
	}
	finish = func() {
		if bar != nil {
			_ = bar.Finish()
		}
	}
	return update, finish
}
