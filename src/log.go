package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:	Save received packets to a log file.
 *
 * Description: Each packet is written as a few readable lines:
 *
 *			Device ID:C0FFEE123456
 *			Len:17
 *			Data:0201060908...
 *
 *		Files are named FSKRXLOG_<time stamp>.TXT in the log
 *		directory.  The time stamp uses a strftime pattern.  The
 *		default changes every second so each run gets its own
 *		file.  Something like "%Y-%m-%d" gives daily files
 *		instead, and a new one is opened when the name changes.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
)

const (
	LogFilePrefix = "FSKRXLOG_"
	LogFileSuffix = ".TXT"

	DefaultLogTimestamp = "%Y%m%d_%H%M%S"
)

// FormatPacketLog is the text saved for one packet.
func FormatPacketLog(pkt *DecodedPacket) string {
	return fmt.Sprintf("Device ID:%s\nLen:%d\nData:%s\n", pkt.MAC(), pkt.Size, pkt.DataHex())
}

type PacketLog struct {
	dir     string
	pattern *strftime.Strftime

	fp        *os.File
	openName  string
	startTime time.Time
	daily     bool
	written   int
}

/*------------------------------------------------------------------
 *
 * Function:	NewPacketLog
 *
 * Inputs:	dir	- Directory for the files.  Created if it does
 *			  not exist, but its parent must.
 *
 *		pattern	- strftime pattern for the time stamp part of
 *			  the name.  Empty means DefaultLogTimestamp.
 *
 *		daily	- Re-evaluate the name for every packet.  Otherwise
 *			  the name is fixed by the time of the first packet.
 *
 *------------------------------------------------------------------*/

func NewPacketLog(dir string, pattern string, daily bool) (*PacketLog, error) {
	if pattern == "" {
		pattern = DefaultLogTimestamp
	}

	var f, err = strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("log time stamp pattern %q: %w", pattern, err)
	}

	var stat, statErr = os.Stat(dir)
	if statErr == nil {
		if !stat.IsDir() {
			return nil, fmt.Errorf("log location %q is not a directory", dir)
		}
	} else {
		// We don't create multiple levels like "mkdir -p"
		if mkdirErr := os.Mkdir(dir, 0o755); mkdirErr != nil {
			return nil, fmt.Errorf("create log location: %w", mkdirErr)
		}

		Logger.Info("Log location created", "dir", dir)
	}

	return &PacketLog{dir: dir, pattern: f, daily: daily}, nil //nolint:exhaustruct
}

// FileName is the name a packet written at now would go to.
func (l *PacketLog) FileName(now time.Time) string {
	return LogFilePrefix + l.pattern.FormatString(now) + LogFileSuffix
}

func (l *PacketLog) Write(pkt *DecodedPacket, now time.Time) error {
	if l.startTime.IsZero() {
		l.startTime = now
	}

	var fname = l.FileName(IfThenElse(l.daily, now, l.startTime))

	if l.fp != nil && fname != l.openName {
		l.Close()
	}

	if l.fp == nil {
		var fullPath = filepath.Join(l.dir, fname)

		Logger.Info("Opening log file", "file", fullPath)

		var f, err = os.OpenFile(fullPath, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}

		l.fp = f
		l.openName = fname
	}

	if _, err := io.WriteString(l.fp, FormatPacketLog(pkt)); err != nil {
		return fmt.Errorf("write log file %s: %w", l.openName, err)
	}

	l.written++

	return nil
}

// Path of the open file, empty if none.
func (l *PacketLog) Path() string {
	if l.fp == nil {
		return ""
	}

	return filepath.Join(l.dir, l.openName)
}

func (l *PacketLog) Written() int {
	return l.written
}

func (l *PacketLog) Close() {
	if l.fp != nil {
		l.fp.Close()
	}

	l.fp = nil
	l.openName = ""
}

// IsLogFileName recognizes our own files when listing a directory.
func IsLogFileName(name string) bool {
	return strings.HasPrefix(name, LogFilePrefix) && strings.HasSuffix(name, LogFileSuffix)
}
