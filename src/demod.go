package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:	Differential FSK bit decision.
 *
 * Description:	With one sample per symbol, the sign of the phase
 *		rotation between two adjacent samples gives the bit.
 *		The imaginary part of conj(a) * b is
 *
 *			I[a] * Q[b] - I[b] * Q[a]
 *
 *		which is positive for a counter-clockwise rotation,
 *		i.e. the higher of the two FSK tones.
 *
 *------------------------------------------------------------------*/

// Complex8 is one raw radio sample, 8 bit signed I and Q.
type Complex8 struct {
	I, Q int8
}

// Complex16 is one decimated sample, 16 bit signed I and Q.
type Complex16 struct {
	I, Q int16
}

// DemodBit is the only place a bit decision is made.  Both the sync
// search and the header/payload byte extraction go through here.
func DemodBit(a, b Complex16) uint8 {
	var cross = int64(a.I)*int64(b.Q) - int64(b.I)*int64(a.Q)

	if cross > 0 {
		return 1
	}

	return 0
}
