package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:   	Periodic statistics for the sample input stream.
 *
 *		There is no indication that anything is arriving until
 *		a packet is decoded.  Every so often print something like:
 *
 *		Sample rate approx. 4000.0 k, 0 errors, peak -23 dB, 12 sync, 3 packets
 *
 *		A bad rate, or a level stuck at the floor, is a good clue
 *		that the input is the problem rather than the decoder.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"time"
)

const DefaultStatsInterval = 100 * time.Second

type SampleStats struct {
	interval time.Duration

	lastTime      time.Time
	sampleCount   int
	errorCount    int
	suppressFirst bool

	lastSync    uint64
	lastPackets uint64
}

// NewSampleStats with interval 0 never reports.
func NewSampleStats(interval time.Duration) *SampleStats {
	return &SampleStats{interval: interval} //nolint:exhaustruct
}

/*------------------------------------------------------------------
*
* Name:        Add
*
* Purpose:     Add sample count from one buffer to the statistics.
*
* Inputs:	nsamp	- How many samples were read.  0 for a failed read.
*
*		ps	- Processor statistics so far.
*
*		now	- Current time.
*
* Returns:     The report line when one is due, otherwise "".
*
*----------------------------------------------------------------*/

func (s *SampleStats) Add(nsamp int, ps Stats, now time.Time) string {
	if s.interval <= 0 {
		return ""
	}

	if s.lastTime.IsZero() {
		/* Suppressing the first report could mean a rather */
		/* long wait, so the first collection interval is 3 seconds. */
		s.lastTime = now.Add(-(s.interval - 3*time.Second))
		s.sampleCount = 0
		s.errorCount = 0
		s.suppressFirst = true
		s.lastSync = ps.SyncHits
		s.lastPackets = ps.Packets

		return ""
	}

	if nsamp > 0 {
		s.sampleCount += nsamp
	} else {
		s.errorCount++
	}

	if now.Before(s.lastTime.Add(s.interval)) {
		return ""
	}

	var report string

	if s.suppressFirst {
		/* The first rate would be off because we didn't start */
		/* on a boundary.  Skip it. */
		s.suppressFirst = false
	} else {
		var elapsed = now.Sub(s.lastTime).Seconds()
		var aveRate = float64(s.sampleCount) / 1000.0 / elapsed

		report = fmt.Sprintf("Sample rate approx. %.1f k, %d errors, peak %d dB, %d sync, %d packets",
			aveRate, s.errorCount, ps.LastDB, ps.SyncHits-s.lastSync, ps.Packets-s.lastPackets)
	}

	s.lastTime = now
	s.sampleCount = 0
	s.errorCount = 0
	s.lastSync = ps.SyncHits
	s.lastPackets = ps.Packets

	return report
}
