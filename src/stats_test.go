package fskrx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSampleStats(t *testing.T) {
	var s = NewSampleStats(10 * time.Second)
	var ps Stats

	// First call starts the clock, the first interval is short and silent.
	assert.Empty(t, s.Add(DefaultBufferSamples, ps, testTime))
	assert.Empty(t, s.Add(DefaultBufferSamples, ps, testTime.Add(time.Second)))
	assert.Empty(t, s.Add(DefaultBufferSamples, ps, testTime.Add(3*time.Second)))

	ps.SyncHits = 5
	ps.Packets = 2
	ps.LastDB = -23

	assert.Empty(t, s.Add(0, ps, testTime.Add(4*time.Second)))
	assert.Equal(t, "Sample rate approx. 4000.0 k, 1 errors, peak -23 dB, 5 sync, 2 packets",
		s.Add(40_000_000, ps, testTime.Add(13*time.Second)))

	// Counts are per interval.
	ps.SyncHits = 6
	assert.Equal(t, "Sample rate approx. 0.0 k, 1 errors, peak -23 dB, 1 sync, 0 packets",
		s.Add(0, ps, testTime.Add(23*time.Second)))
}

func TestSampleStatsDisabled(t *testing.T) {
	var s = NewSampleStats(0)

	for i := range 10 {
		assert.Empty(t, s.Add(DefaultBufferSamples, Stats{}, testTime.Add(time.Duration(i)*time.Hour))) //nolint:exhaustruct
	}
}
