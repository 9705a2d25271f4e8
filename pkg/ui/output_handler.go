// Package ui renders command results and errors for the terminal
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Reporter writes results to one stream and errors to another. Errors are
// coloured when the error stream is a terminal.
type Reporter struct {
	prog   string
	format string
	out    io.Writer
	errOut io.Writer
	red    *color.Color
	mutex  sync.Mutex
}

// detailed is implemented by errors that know how to present themselves,
// such as usage errors that carry a usage line.
type detailed interface {
	Detail() string
}

// NewReporter creates a reporter for prog
func NewReporter(prog, format string, out, errOut io.Writer) *Reporter {
	red := color.New(color.FgRed)
	if isTerminal(errOut) {
		red.EnableColor()
	} else {
		red.DisableColor()
	}
	return &Reporter{prog: prog, format: format, out: out, errOut: errOut, red: red}
}

// Result renders a command result
func (r *Reporter) Result(result any) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return Render(r.out, result, r.format)
}

// Error reports err on the error stream
func (r *Reporter) Error(err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var d detailed
	if errors.As(err, &d) {
		fmt.Fprintln(r.errOut, r.red.Sprint(d.Detail()))
		return
	}
	fmt.Fprintln(r.errOut, r.red.Sprintf("%s: error: %v", r.prog, err))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
