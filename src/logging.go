package fskrx

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is shared by the library and the commands.
// Decoded packets themselves go to stdout, not here.
var Logger = log.NewWithOptions(os.Stderr, log.Options{ //nolint:exhaustruct
	ReportTimestamp: true,
	Prefix:          "fskrx",
})

// SetLogLevel accepts debug, info, warn, error.
func SetLogLevel(level string) error {
	var l, err = log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}

	Logger.SetLevel(l)

	return nil
}

// SetLogOutput redirects the shared logger, mostly for tests.
func SetLogOutput(w io.Writer) {
	Logger.SetOutput(w)
}

func debugEnabled() bool {
	return Logger.GetLevel() <= log.DebugLevel
}
