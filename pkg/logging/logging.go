package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Debug mode switches to a human readable
// console writer and lowers the level.
func New(debug bool, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
