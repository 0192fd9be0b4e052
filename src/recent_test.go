package fskrx

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var testTime = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

// decodedPacket is what the processor would make of g.
func decodedPacket(g *GenPacket, db int) DecodedPacket {
	var pkt DecodedPacket

	pkt.DeviceID = g.Address
	pkt.Type = g.PDUType
	pkt.Size = uint8(DeviceIDBytes + len(g.AD))
	pkt.DataLen = copy(pkt.Data[:], g.AD)
	pkt.CRC = g.CRC()
	pkt.DB = db

	return pkt
}

func TestRecentOnPacket(t *testing.T) {
	var r = NewRecentEntries()

	var a = decodedPacket(testPacket(0), -40)
	var b = decodedPacket(testPacket(1), -30)

	var e = r.OnPacket(&a, testTime)
	assert.Equal(t, 1, e.Hits)
	assert.Equal(t, "dev-0", e.NameString)
	assert.Equal(t, a.DataHex(), e.DataString)
	assert.True(t, e.IncludeName)

	r.OnPacket(&b, testTime.Add(time.Second))

	a.DB = -20
	e = r.OnPacket(&a, testTime.Add(2*time.Second))
	assert.Equal(t, 2, e.Hits)
	assert.Equal(t, -20, e.DB)
	assert.Equal(t, testTime.Add(2*time.Second), e.Timestamp)

	require.Equal(t, 2, r.Len())

	// New entries go in at the front.
	assert.Equal(t, b.Key(), r.All()[0].Key)
}

func TestRecentKeepsName(t *testing.T) {
	var r = NewRecentEntries()
	var g = testPacket(2)

	var named = decodedPacket(g, -40)
	r.OnPacket(&named, testTime)

	// Same device, advertising without a name this time.
	g.AD = []byte{2, adTypeFlags, 6}
	var plain = decodedPacket(g, -40)
	var e = r.OnPacket(&plain, testTime)

	assert.Equal(t, "dev-2", e.NameString)
	assert.Equal(t, "020106", e.DataString)
}

func TestRecentLimit(t *testing.T) {
	var r = NewRecentEntries()

	for i := range MaxRecentEntries + 10 {
		var pkt = decodedPacket(testPacket(i), -50)
		r.OnPacket(&pkt, testTime)
	}

	assert.Equal(t, MaxRecentEntries, r.Len())

	r.Clear()
	assert.Zero(t, r.Len())
}

func TestRecentFilter(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var n = rapid.IntRange(1, 20).Draw(t, "n")
		var r = NewRecentEntries()
		for range n {
			var g = testPacket(rapid.IntRange(0, 200).Draw(t, "device"))
			var pkt = decodedPacket(g, -50)
			r.OnPacket(&pkt, testTime)
		}

		var all = r.All()

		// Mostly pieces of real data and names, so there are matches to find.
		var e = rapid.SampledFrom(all).Draw(t, "entry")
		var filter = rapid.OneOf(
			substringOf(e.DataString),
			substringOf(e.NameString),
			rapid.StringMatching(`[0-9A-Fa-f-]{0,4}`),
		).Draw(t, "filter")

		var want = slices.DeleteFunc(slices.Clone(all), func(e *RecentEntry) bool {
			return !strings.Contains(e.DataString, filter) && !strings.Contains(e.NameString, filter)
		})

		r.SetFilter(filter)
		require.Equal(t, want, r.Visible())

		// Clearing the filter brings everything back.
		r.SetFilter("")
		require.Equal(t, all, r.Visible())
	})
}

func substringOf(s string) *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		var i = rapid.IntRange(0, len(s)).Draw(t, "start")
		var j = rapid.IntRange(i, len(s)).Draw(t, "end")

		return s[i:j]
	})
}

func TestRecentSortIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var r = NewRecentEntries()
		var n = rapid.IntRange(0, 30).Draw(t, "n")
		for range n {
			var i = rapid.IntRange(0, 9).Draw(t, "device")
			var pkt = decodedPacket(testPacket(i), rapid.IntRange(-100, 0).Draw(t, "db"))
			var at = testTime.Add(time.Duration(rapid.IntRange(0, 1000).Draw(t, "ms")) * time.Millisecond)
			r.OnPacket(&pkt, at)
		}

		var mode = SortMode(rapid.IntRange(int(SortHits), int(SortName)).Draw(t, "mode"))

		r.Sort(mode)
		var once = r.All()
		r.Sort(mode)
		require.Equal(t, once, r.All())

		for i := 1; i < len(once); i++ {
			var a, b = once[i-1], once[i]
			switch mode {
			case SortHits:
				require.GreaterOrEqual(t, a.Hits, b.Hits)
			case SortDB:
				require.GreaterOrEqual(t, a.DB, b.DB)
			case SortTime:
				require.False(t, a.Timestamp.Before(b.Timestamp))
			case SortName:
				require.LessOrEqual(t, a.NameString, b.NameString)
			}
		}
	})
}

func TestSortModeString(t *testing.T) {
	assert.Equal(t, "Hits", SortHits.String())
	assert.Equal(t, "Name", SortName.String())
	assert.Equal(t, "SortMode(9)", SortMode(9).String())
}

func TestFormatRow(t *testing.T) {
	var r = NewRecentEntries()
	var pkt = decodedPacket(testPacket(0), -40)
	var e = r.OnPacket(&pkt, testTime)
	e.Hits = 123

	var want = "dev-0" + strings.Repeat(" ", 12) + " " + "    123" + " " + " -40"
	assert.Equal(t, want, FormatRow(e, DefaultRowWidth))
	assert.Len(t, FormatRow(e, DefaultRowWidth), DefaultRowWidth)

	// Cut to fit.
	assert.Equal(t, "dev-0", FormatRow(e, 5))

	// Padded to fit.
	assert.Equal(t, want+"   ", FormatRow(e, DefaultRowWidth+3))

	r.SetIncludeName(false)
	assert.True(t, strings.HasPrefix(FormatRow(e, DefaultRowWidth), "C0FFEE000000 "))
}

func TestDump(t *testing.T) {
	var r = NewRecentEntries()
	for i := range 3 {
		var pkt = decodedPacket(testPacket(i), -40)
		r.OnPacket(&pkt, testTime)
	}
	r.SetFilter("dev-1")

	var buf bytes.Buffer
	r.Dump(&buf, DefaultRowWidth)

	var lines = strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Device ID"))
	assert.True(t, strings.HasPrefix(lines[1], "dev-1 "))
}

func ExampleFormatPacketLog() {
	var g = GenPacket{
		PDUType: 2,
		Address: [DeviceIDBytes]byte{0xC0, 0xFF, 0xEE, 0x12, 0x34, 0x56},
		AD:      NamedAdvert("tag"),
	}
	var pkt = decodedPacket(&g, -40)

	fmt.Print(FormatPacketLog(&pkt))
	// Output:
	// Device ID:C0FFEE123456
	// Len:14
	// Data:0201060409746167
}
