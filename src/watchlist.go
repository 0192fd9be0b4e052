package fskrx

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Watch for particular devices or data.
 *
 * Description:	A plain text file, one search string per line.  Each
 *		new entry is checked against every line, the same way as
 *		the display filter, and counted once when it first
 *		matches.
 *
 *------------------------------------------------------------------*/

const maxWatchLineLength = 256

type Watchlist struct {
	path   string
	lines  []string
	found  int
	hitKey map[uint64]bool
}

func NewWatchlist() *Watchlist {
	return &Watchlist{hitKey: make(map[uint64]bool)} //nolint:exhaustruct
}

func (w *Watchlist) Clear() {
	w.path = ""
	w.lines = w.lines[:0]
	w.found = 0
	clear(w.hitKey)
}

// Load replaces the list with the lines of a file.  On failure the list
// is left empty.
func (w *Watchlist) Load(path string) error {
	w.Clear()

	var f, err = os.Open(path)
	if err != nil {
		return fmt.Errorf("watchlist: %w", err)
	}
	defer f.Close()

	if err := w.Read(f); err != nil {
		w.Clear()
		return fmt.Errorf("watchlist %s: %w", path, err)
	}

	w.path = path
	Logger.Info("Watchlist loaded", "file", path, "lines", len(w.lines))

	return nil
}

// Read adds lines from r.  Trailing CR is removed, blank lines are skipped.
func (w *Watchlist) Read(r io.Reader) error {
	var scanner = bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxWatchLineLength), maxWatchLineLength)

	for scanner.Scan() {
		var line = strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		w.lines = append(w.lines, line)
	}

	return scanner.Err() //nolint:wrapcheck
}

func (w *Watchlist) Path() string {
	return w.path
}

func (w *Watchlist) Total() int {
	return len(w.lines)
}

func (w *Watchlist) Found() int {
	return w.found
}

// Check marks the entry if any line matches it.  Returns true the first
// time a device matches.
func (w *Watchlist) Check(e *RecentEntry) bool {
	if len(w.lines) == 0 || w.hitKey[e.Key] {
		return false
	}

	for _, line := range w.lines {
		if MatchesFilter(e, line) {
			e.Found = true
			w.hitKey[e.Key] = true
			w.found++

			return true
		}
	}

	return false
}
