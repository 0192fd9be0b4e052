package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:	Find the access address (sync word) in the bit stream.
 *
 * Description:	The most recent 32 bit decisions are kept in a circular
 *		window.  After each new bit the window is compared with
 *		the target, oldest bit first against bit 0 of the target,
 *		giving up at the first difference.  On air the access
 *		address is sent least significant bit first, so a hit
 *		means the window, read oldest to newest, spells out the
 *		target from bit 0 to bit 31.
 *
 *		Most positions fail on the first or second bit so the
 *		comparison count stays close to one per symbol.
 *
 *------------------------------------------------------------------*/

const (
	SyncWordBits = 32

	SyncWordBLE uint32 = 0x8E89BED6 // BLE advertising access address.
	SyncWordFSK uint32 = 0x84B3E374
)

type Correlator struct {
	target uint32
	window *Ring[uint8] // BitWindow, capacity SyncWordBits.
	filled int          // Real bits in the window since the last reset, saturates at 32.

	captured    uint32 // Window contents at the last hit.
	comparisons uint64 // Bit compares performed, for observing the early exit.
}

func NewCorrelator(target uint32) *Correlator {
	return &Correlator{
		target: target,
		window: NewRing[uint8](SyncWordBits),
	}
}

func (c *Correlator) Target() uint32 {
	return c.target
}

func (c *Correlator) SetTarget(target uint32) {
	c.target = target
	c.Reset()
}

// Reset forgets the window contents.  A new hit needs 32 fresh bits.
func (c *Correlator) Reset() {
	c.window.Reset()
	c.filled = 0
}

// Push adds one bit decision and reports whether the window now
// matches the target.
func (c *Correlator) Push(bit uint8) bool {
	c.window.Push(bit)
	if c.filled < SyncWordBits {
		c.filled++
	}

	if c.filled < SyncWordBits {
		return false
	}

	var oldest = c.window.Head() - SyncWordBits
	var captured uint32

	for p := range SyncWordBits {
		c.comparisons++

		var b = c.window.At(oldest + uint64(p))
		if uint32(b) != (c.target>>p)&1 {
			return false
		}

		captured |= uint32(b) << p
	}

	c.captured = captured

	return true
}

// Captured is the sync value recorded at the last hit.
func (c *Correlator) Captured() uint32 {
	return c.captured
}

func (c *Correlator) Comparisons() uint64 {
	return c.comparisons
}

// contents returns the current window, bit p = p-th oldest of the last
// 32 bits.  Unfilled slots read as 0.
func (c *Correlator) contents() uint32 {
	var w uint32
	var head = c.window.Head()

	for p := range SyncWordBits {
		var pos = head - SyncWordBits + uint64(p)
		if head >= SyncWordBits && c.window.Holds(pos) {
			w |= uint32(c.window.At(pos)) << p
		}
	}

	return w
}
