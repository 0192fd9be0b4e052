package fskrx

import (
	"math"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Signal level for each buffer, attached to decoded packets.
 *
 * Description:	Peak of I*I + Q*Q over the raw (not decimated) samples,
 *		normalized so that a full scale sample is 0 dB.
 *
 *------------------------------------------------------------------*/

// MinPowerDB is reported for a buffer of silence.
const MinPowerDB = -120

// Largest magnitude of an 8 bit component.
const fullScale8 = 128.0

func magSquared(s Complex8) uint32 {
	var i = int32(s.I)
	var q = int32(s.Q)

	return uint32(i*i + q*q)
}

// mag2ToDB maps a normalized magnitude squared to dB.  Monotonic.
func mag2ToDB(mag2 float64) int {
	if mag2 <= 0 {
		return MinPowerDB
	}

	var db = 10 * math.Log10(mag2)
	if db < MinPowerDB {
		return MinPowerDB
	}

	return int(math.Round(db))
}

// PeakPowerDB is the power estimate for one buffer.
func PeakPowerDB(raw []Complex8) int {
	var maxSquared uint32

	for _, s := range raw {
		var m = magSquared(s)
		if m > maxSquared {
			maxSquared = m
		}
	}

	return mag2ToDB(float64(maxSquared) * (1.0 / (fullScale8 * fullScale8)))
}
