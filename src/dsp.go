package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:     Generate the filters used by the decimator.
 *
 *----------------------------------------------------------------*/

import (
	"fmt"
	"math"
)

type bp_window_t int

const (
	BP_WINDOW_HAMMING bp_window_t = iota
	BP_WINDOW_BLACKMAN
)

const MAX_FILTER_SIZE = 128

/*------------------------------------------------------------------
 *
 * Name:        window
 *
 * Purpose:     Filter window shape functions.
 *
 * Inputs:   	type	- BP_WINDOW_HAMMING, etc.
 *		size	- Number of filter taps.
 *		j	- Index in range of 0 to size-1.
 *
 * Returns:     Multiplier for the window shape.
 *
 *----------------------------------------------------------------*/

func window(windowType bp_window_t, _size int, _j int) float64 {

	var size = float64(_size) // Save on a lot of casting later
	var j = float64(_j)

	var w float64

	switch windowType {

	case BP_WINDOW_HAMMING:
		w = 0.53836 - 0.46164*math.Cos((j*2*math.Pi)/(size-1))

	case BP_WINDOW_BLACKMAN:
		w = 0.42659 - 0.49656*math.Cos((j*2*math.Pi)/(size-1)) +
			0.076849*math.Cos((j*4*math.Pi)/(size-1))

	default:
		w = 1.0
	}

	return w
}

/*------------------------------------------------------------------
 *
 * Name:        gen_lowpass
 *
 * Purpose:     Generate low pass filter kernel.
 *
 * Inputs:   	fc		- Cutoff frequency as fraction of sampling frequency.
 *		filter_size	- Number of filter taps.
 *		wtype		- Window type, BP_WINDOW_HAMMING, etc.
 *
 * Outputs:     lp_filter, normalized for unity gain at DC.
 *
 *----------------------------------------------------------------*/

func gen_lowpass(fc float64, lp_filter []float64, filter_size int, wtype bp_window_t) {

	Assert(filter_size >= 3 && filter_size <= MAX_FILTER_SIZE)

	var center = 0.5 * float64(filter_size-1)

	for j := 0; j < filter_size; j++ {
		var sinc float64

		if float64(j)-center == 0 {
			sinc = 2 * fc
		} else {
			sinc = math.Sin(2*math.Pi*(fc*(float64(j)-center))) / (math.Pi * (float64(j) - center))
		}

		lp_filter[j] = sinc * window(wtype, filter_size, j)
	}

	var G float64 = 0
	for j := 0; j < filter_size; j++ {
		G += lp_filter[j]
	}
	for j := 0; j < filter_size; j++ {
		lp_filter[j] /= G
	}
} /* end gen_lowpass */

/*------------------------------------------------------------------
 *
 * Name:        rrc
 *
 * Purpose:     Root Raised Cosine function.
 *
 * Inputs:      t		- Time in units of symbol duration.
 *		a		- Roll off factor, between 0 and 1.
 *
 * Returns:	1 for t = 0 and 0 at all other integer values of t.
 *
 *----------------------------------------------------------------*/

func rrc(t float64, a float64) float64 {

	var sinc, w float64

	if t > -0.001 && t < 0.001 {
		sinc = 1
	} else {
		sinc = math.Sin(math.Pi*t) / (math.Pi * t)
	}

	if math.Abs(a*t) > 0.499 && math.Abs(a*t) < 0.501 {
		w = math.Pi / 4
	} else {
		w = math.Cos(math.Pi*a*t) / (1 - math.Pow(2*a*t, 2))
	}

	return sinc * w
}

func gen_rrc_lowpass(pfilter []float64, filter_taps int, rolloff float64, samples_per_symbol float64) {
	var t float64

	for k := 0; k < filter_taps; k++ {
		t = (float64(k) - ((float64(filter_taps) - 1.0) / 2.0)) / samples_per_symbol
		pfilter[k] = rrc(t, rolloff)
	}

	// Scale it for unity gain.

	t = 0
	for k := 0; k < filter_taps; k++ {
		t += pfilter[k]
	}
	for k := 0; k < filter_taps; k++ {
		pfilter[k] /= t
	}
}

// TapTable selects the decimation filter.
type TapTable int

const (
	// TapsBLE1M is a 24 tap Hamming windowed low pass for a 1 Msym/s
	// signal sampled at 4 MHz.
	TapsBLE1M TapTable = iota

	// TapsRRC is a root raised cosine matched to 4 samples per symbol.
	TapsRRC

	// TapsPick keeps every Nth sample with no filtering at all.
	TapsPick

	// TapsBlackman is TapsBLE1M with a Blackman window: lower side
	// lobes for a wider transition band.
	TapsBlackman
)

// AllTapTables in String order.
var AllTapTables = []TapTable{TapsBLE1M, TapsRRC, TapsPick, TapsBlackman}

const (
	DecimateFactor = 4  // 4 MHz in, one sample per symbol out.
	bleTapCount    = 24 // Same length as the firmware's decimation filter.
	bleCutoff      = 0.15
	rrcTapCount    = 33
	rrcRolloff     = 0.5
)

func (t TapTable) String() string {
	switch t {
	case TapsBLE1M:
		return "ble1m"
	case TapsRRC:
		return "rrc"
	case TapsPick:
		return "pick"
	case TapsBlackman:
		return "blackman"
	}

	return fmt.Sprintf("TapTable(%d)", int(t))
}

// ParseTapTable is the inverse of String.
func ParseTapTable(s string) (TapTable, error) {
	for _, t := range AllTapTables {
		if t.String() == s {
			return t, nil
		}
	}

	return TapsBLE1M, fmt.Errorf("unknown tap table %q", s)
}

// Taps generates the coefficients for a table.
func (t TapTable) Taps() []float64 {
	switch t {
	case TapsRRC:
		var taps = make([]float64, rrcTapCount)
		gen_rrc_lowpass(taps, rrcTapCount, rrcRolloff, DecimateFactor)

		return taps

	case TapsPick:
		return []float64{1}

	case TapsBlackman:
		var taps = make([]float64, bleTapCount)
		gen_lowpass(bleCutoff, taps, bleTapCount, BP_WINDOW_BLACKMAN)

		return taps

	case TapsBLE1M:
		fallthrough
	default:
		var taps = make([]float64, bleTapCount)
		gen_lowpass(bleCutoff, taps, bleTapCount, BP_WINDOW_HAMMING)

		return taps
	}
}
