package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:	Maintain a list of all devices heard.
 *
 * Description: One entry per device id with a hit count, the most
 *		recent level, time, data and name.  The list can be
 *		filtered for display and sorted a few different ways.
 *
 *		Filtering never removes anything, it only decides what
 *		Visible returns, so clearing the filter brings back the
 *		whole list.
 *
 *------------------------------------------------------------------*/

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

const MaxRecentEntries = 64

type RecentEntry struct {
	Key         uint64
	Packet      DecodedPacket
	DB          int
	Timestamp   time.Time
	DataString  string // Payload as hex, what the filter looks at.
	NameString  string
	IncludeName bool
	Hits        int
	Channel     int
	Found       bool // Matched the watchlist.
}

type SortMode int

const (
	SortHits SortMode = iota
	SortDB
	SortTime
	SortName
)

func (m SortMode) String() string {
	switch m {
	case SortHits:
		return "Hits"
	case SortDB:
		return "dB"
	case SortTime:
		return "Time"
	case SortName:
		return "Name"
	}

	return fmt.Sprintf("SortMode(%d)", int(m))
}

type RecentEntries struct {
	entries     []*RecentEntry // Most recently added first.
	filter      string
	includeName bool
}

func NewRecentEntries() *RecentEntries {
	return &RecentEntries{includeName: true}
}

func (r *RecentEntries) find(key uint64) *RecentEntry {
	for _, e := range r.entries {
		if e.Key == key {
			return e
		}
	}

	return nil
}

/*------------------------------------------------------------------
 *
 * Function:	OnPacket
 *
 * Purpose:	Add or update the entry for a decoded packet.
 *
 * Returns:	The entry, so the caller can annotate it further.
 *
 *------------------------------------------------------------------*/

func (r *RecentEntries) OnPacket(pkt *DecodedPacket, now time.Time) *RecentEntry {
	var key = pkt.Key()
	var e = r.find(key)

	if e == nil {
		e = &RecentEntry{Key: key} //nolint:exhaustruct
		r.entries = slices.Insert(r.entries, 0, e)

		if len(r.entries) > MaxRecentEntries {
			r.entries = r.entries[:MaxRecentEntries]
		}
	}

	e.Packet = *pkt
	e.DB = pkt.DB
	e.Timestamp = now
	e.DataString = pkt.DataHex()
	if name := ParseLocalName(pkt.Payload()); name != "" {
		e.NameString = name
	}
	e.IncludeName = r.includeName
	e.Channel = pkt.Channel
	e.Hits++

	return e
}

func (r *RecentEntries) Len() int {
	return len(r.entries)
}

func (r *RecentEntries) Clear() {
	r.entries = r.entries[:0]
}

// All entries in the current order, ignoring the filter.
func (r *RecentEntries) All() []*RecentEntry {
	return slices.Clone(r.entries)
}

// SetIncludeName turns display of names on or off for every entry.
func (r *RecentEntries) SetIncludeName(v bool) {
	r.includeName = v
	for _, e := range r.entries {
		e.IncludeName = v
	}
}

func (r *RecentEntries) SetFilter(filter string) {
	r.filter = filter
}

func (r *RecentEntries) Filter() string {
	return r.filter
}

// MatchesFilter is a plain case sensitive substring test of the data hex
// or the name.  The empty filter matches everything.
func MatchesFilter(e *RecentEntry, filter string) bool {
	return strings.Contains(e.DataString, filter) || strings.Contains(e.NameString, filter)
}

// Visible is the filtered list, in the current order.
func (r *RecentEntries) Visible() []*RecentEntry {
	var v = make([]*RecentEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if MatchesFilter(e, r.filter) {
			v = append(v, e)
		}
	}

	return v
}

// Sort reorders the list.  Stable, so sorting twice changes nothing.
func (r *RecentEntries) Sort(mode SortMode) {
	switch mode {
	case SortHits:
		slices.SortStableFunc(r.entries, func(a, b *RecentEntry) int { return cmp.Compare(b.Hits, a.Hits) })
	case SortDB:
		slices.SortStableFunc(r.entries, func(a, b *RecentEntry) int { return cmp.Compare(b.DB, a.DB) })
	case SortTime:
		slices.SortStableFunc(r.entries, func(a, b *RecentEntry) int { return b.Timestamp.Compare(a.Timestamp) })
	case SortName:
		slices.SortStableFunc(r.entries, func(a, b *RecentEntry) int { return strings.Compare(a.NameString, b.NameString) })
	}
}

/*------------------------------------------------------------------
 *
 * Function:	FormatRow
 *
 * Purpose:	One line of the list display.
 *
 * Description:	Name, or MAC when there is no name to show, in 17
 *		columns.  Hits right justified in 7, dB in 4, with a
 *		space before each.  The whole thing padded or cut to width.
 *
 *------------------------------------------------------------------*/

const (
	nameColumnWidth = 17
	hitsColumnWidth = 7
	dbColumnWidth   = 4

	DefaultRowWidth = nameColumnWidth + 1 + hitsColumnWidth + 1 + dbColumnWidth
)

func fitColumn(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}

	return s + strings.Repeat(" ", width-len(s))
}

func FormatRow(e *RecentEntry, width int) string {
	var label string
	if e.NameString != "" && e.IncludeName {
		label = e.NameString
	} else {
		label = e.Packet.MAC()
	}

	var line = fmt.Sprintf("%s %*d %*d", fitColumn(label, nameColumnWidth), hitsColumnWidth, e.Hits, dbColumnWidth, e.DB)

	return fitColumn(line, width)
}

// Dump prints the visible list with a heading.
func (r *RecentEntries) Dump(w io.Writer, width int) {
	var heading = fmt.Sprintf("%-*s %*s %*s", nameColumnWidth, "Device ID", hitsColumnWidth, "Hits", dbColumnWidth, "dB")

	fmt.Fprintln(w, fitColumn(heading, width))
	for _, e := range r.Visible() {
		fmt.Fprintln(w, FormatRow(e, width))
	}
}
