package main

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// spinnerProgress shows an indeterminate spinner while a lookup fetches and
// converts.
type spinnerProgress struct {
	spinner *spinner.Spinner
}

// newProgress returns a spinner writing to w, or false when w is not a
// terminal so that redirected output stays clean.
func newProgress(w io.Writer) (*spinnerProgress, bool) {
	f, ok := w.(*os.File)
	if !ok || !isTerminal(f) {
		return nil, false
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = f
	return &spinnerProgress{spinner: s}, true
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Start starts the spinner with msg next to it.
func (p *spinnerProgress) Start(msg string) {
	p.spinner.Suffix = " " + msg
	p.spinner.Start()
}

// Stop stops the spinner and clears the line.
func (p *spinnerProgress) Stop() {
	p.spinner.Stop()
}
