package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShown is returned by Parse after help or the version was printed.
// The caller should exit successfully without dispatching.
var ErrShown = errors.New("help shown")

// UsageError is a problem with the command line itself: a missing or
// unknown selection, a missing positional, an unknown flag or a value
// that does not convert to the parameter type.
type UsageError struct {
	// Prog is the program name used as the error prefix
	Prog string
	// Usage is the usage line of the level the error happened at
	Usage string
	Err   error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// ExitCode is the process status for command-line mistakes
func (e *UsageError) ExitCode() int {
	return 2
}

// Detail renders the error the way it is shown to the user: the usage
// line followed by the prefixed message.
func (e *UsageError) Detail() string {
	return fmt.Sprintf("usage: %s\n%s: error: %s", strings.TrimSpace(e.Usage), e.Prog, e.Err)
}

func (p *Parser) usageError(usage string, err error) error {
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return err
	}
	return &UsageError{Prog: p.config.Prog, Usage: usage, Err: err}
}

func invalidChoice(what, got string, choices []string) error {
	quoted := make([]string, len(choices))
	for i, choice := range choices {
		quoted[i] = "'" + choice + "'"
	}
	return fmt.Errorf("argument %s: invalid choice: '%s' (choose from %s)", what, got, strings.Join(quoted, ", "))
}

func missingArguments(names ...string) error {
	return fmt.Errorf("the following arguments are required: %s", strings.Join(names, ", "))
}

func unrecognizedArguments(args []string) error {
	return fmt.Errorf("unrecognized arguments: %s", strings.Join(args, " "))
}
