package fskrx

import (
	"math"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Reduce the raw 8 bit sample stream to one 16 bit sample
 *		per symbol.
 *
 * Description:	A plain FIR filter evaluated only at the output instants.
 *		The last len(taps)-1 input samples are carried to the next
 *		call, as is the position of the next output instant, so
 *		the output does not depend on how the input was split
 *		into buffers.
 *
 *------------------------------------------------------------------*/

// 8 bit in, 16 bit out.
const decimateOutScale = 256.0

type Decimator struct {
	taps    []float64
	factor  int
	history []Complex8 // Last len(taps)-1 raw samples.
	phase   int        // Raw samples to skip before the next output.
	work    []Complex8
}

func NewDecimator(taps []float64, factor int) *Decimator {
	Assert(len(taps) >= 1 && factor >= 1)

	var d = &Decimator{
		factor: factor,
	}
	d.SetTaps(taps)

	return d
}

// SetTaps retunes the filter.  History is kept, trimmed or zero padded
// at the old end, to match the new length.  Use Reset to clear it.
func (d *Decimator) SetTaps(taps []float64) {
	Assert(len(taps) >= 1)

	d.taps = append(d.taps[:0], taps...)

	var want = len(taps) - 1
	var h = make([]Complex8, want)
	var keep = min(want, len(d.history))
	copy(h[want-keep:], d.history[len(d.history)-keep:])
	d.history = h
}

// Reset clears the filter history.
func (d *Decimator) Reset() {
	clear(d.history)
	d.phase = 0
}

func (d *Decimator) Factor() int {
	return d.factor
}

// OutputLen is how many samples the next Execute of n inputs produces.
func (d *Decimator) OutputLen(n int) int {
	if n <= d.phase {
		return 0
	}

	return (n - d.phase + d.factor - 1) / d.factor
}

func saturate16(v float64) int16 {
	v = math.Round(v)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}

	return int16(v)
}

// Execute filters and decimates in, writing to out.
// Returns the number of samples written.  out must hold OutputLen(len(in)).
func (d *Decimator) Execute(in []Complex8, out []Complex16) int {
	Assert(len(out) >= d.OutputLen(len(in)))

	d.work = append(d.work[:0], d.history...)
	d.work = append(d.work, in...)

	var L = len(d.taps)
	var n = 0
	var idx = L - 1 + d.phase

	for ; idx < len(d.work); idx += d.factor {
		var sumI, sumQ float64
		for k, h := range d.taps {
			var s = d.work[idx-k]
			sumI += h * float64(s.I)
			sumQ += h * float64(s.Q)
		}
		out[n] = Complex16{
			I: saturate16(sumI * decimateOutScale),
			Q: saturate16(sumQ * decimateOutScale),
		}
		n++
	}

	d.phase = idx - len(d.work)
	copy(d.history, d.work[len(d.work)-(L-1):])

	return n
}
