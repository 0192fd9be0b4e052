package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:	Decimated symbols as one continuous stream.
 *
 * Description:	Every decimated sample gets an absolute position that
 *		keeps counting across buffers.  Bit k of the stream is the
 *		decision between samples k and k+1, so the last sample of
 *		one buffer pairs with the first sample of the next and a
 *		packet may start in one buffer and end several later.
 *
 *		The history must hold the longest packet plus one buffer:
 *		(2 + 255 + 3) bytes * 8 + 1 symbols plus 512.
 *
 *------------------------------------------------------------------*/

const SymbolHistory = 8192

type SymbolStream struct {
	ring *Ring[Complex16]
}

func NewSymbolStream() *SymbolStream {
	return &SymbolStream{ring: NewRing[Complex16](SymbolHistory)}
}

func (s *SymbolStream) Append(syms []Complex16) {
	for _, v := range syms {
		s.ring.Push(v)
	}
}

// Head is one past the newest sample.
func (s *SymbolStream) Head() uint64 {
	return s.ring.Head()
}

// Tail is the oldest sample still held.
func (s *SymbolStream) Tail() uint64 {
	return s.ring.Tail()
}

// HasBits reports whether n bits starting at pos can be decided.
// That needs samples pos through pos+n.
func (s *SymbolStream) HasBits(pos uint64, n int) bool {
	return pos >= s.ring.Tail() && pos+uint64(n) < s.ring.Head()
}

// Bit is the decision for stream position pos.
func (s *SymbolStream) Bit(pos uint64) uint8 {
	return DemodBit(s.ring.At(pos), s.ring.At(pos+1))
}

// Byte assembles 8 bits starting at pos, least significant bit first.
func (s *SymbolStream) Byte(pos uint64) byte {
	var b byte
	for j := range 8 {
		b |= s.Bit(pos+uint64(j)) << j
	}

	return b
}

// Discard drops everything held.  Positions keep counting.
func (s *SymbolStream) Discard() {
	s.ring.Reset()
}
