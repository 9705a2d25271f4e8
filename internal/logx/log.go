// Package logx configures the process-wide zerolog logger
package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Configure sets the global log level. The level string is tolerant of
// case and common synonyms; unknown values mean info.
func Configure(level string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
}

// ParseLevel converts a level name to a zerolog level.
// Accepts: all, trace, debug, info, warn, warning, error, none.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "all", "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "none", "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Setup points the global logger at w. Terminals get the human-readable
// console format, anything else gets one JSON object per line.
func Setup(w io.Writer) {
	if isTerminal(w) {
		w = zerolog.ConsoleWriter{Out: w}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
