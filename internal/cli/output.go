package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"swf-translator/internal/translation"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var (
	cyan   = color.New(color.Bold, color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.Bold, color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func summaryLine(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "  %-14s %v\n", label+":", value)
}

// progressBar renders backend progress on stderr when it is a terminal.
type progressBar struct {
	mu    sync.Mutex
	p     *mpb.Progress
	bar   *mpb.Bar
	label string
}

func newProgressBar(label string) *progressBar {
	if !isTerminal(os.Stderr) {
		return nil
	}
	return &progressBar{p: mpb.New(mpb.WithWidth(60), mpb.WithOutput(os.Stderr)), label: label}
}

// Func returns the callback to hand to a backend. A nil bar yields nil.
func (pb *progressBar) Func() translation.ProgressFunc {
	if pb == nil {
		return nil
	}
	return func(done, total int) {
		pb.mu.Lock()
		defer pb.mu.Unlock()
		if pb.bar == nil {
			pb.bar = pb.p.AddBar(int64(total),
				mpb.PrependDecorators(
					decor.Name(pb.label, decor.WCSyncSpaceR),
				),
				mpb.AppendDecorators(
					decor.Percentage(decor.WC{W: 5}),
					decor.Counters(0, " | %d/%d"),
					decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 6}, decor.WCSyncSpace),
				),
			)
		}
		pb.bar.SetCurrent(int64(done))
	}
}

// Finish completes or aborts the bar and waits for rendering to stop.
func (pb *progressBar) Finish(ok bool) {
	if pb == nil {
		return
	}
	pb.mu.Lock()
	if pb.bar != nil && !pb.bar.Completed() {
		if ok {
			pb.bar.SetTotal(-1, true)
		} else {
			pb.bar.Abort(false)
		}
	}
	pb.mu.Unlock()
	pb.p.Wait()
}
