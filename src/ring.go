package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:	Fixed capacity circular buffer.
 *
 * Description:	Capacity is always a power of two so that positions
 *		wrap with a mask rather than a modulo.  Positions are
 *		absolute, ever increasing counts of values pushed.
 *		Only the most recent capacity of them are retained.
 *
 *		Used for the 32 slot bit window of the sync correlator
 *		and for the decimated symbol history.
 *
 *------------------------------------------------------------------*/

type Ring[T any] struct {
	buf  []T
	mask uint64
	head uint64 // Absolute position of the next value to be written.
	base uint64 // Nothing before this is retained, set by Reset.
}

// NewRing allocates a ring.  capacity must be a power of two.
func NewRing[T any](capacity int) *Ring[T] {
	Assert(isPowerOfTwo(capacity))

	return &Ring[T]{
		buf:  make([]T, capacity),
		mask: uint64(capacity - 1),
	}
}

// Push appends a value, overwriting the oldest once full.
func (r *Ring[T]) Push(v T) {
	r.buf[r.head&r.mask] = v
	r.head++
}

// Head is the absolute position one past the newest value.
func (r *Ring[T]) Head() uint64 {
	return r.head
}

// Tail is the absolute position of the oldest retained value.
func (r *Ring[T]) Tail() uint64 {
	if r.head-r.base < uint64(len(r.buf)) {
		return r.base
	}

	return r.head - uint64(len(r.buf))
}

// Len is the number of retained values.
func (r *Ring[T]) Len() int {
	return int(r.head - r.Tail())
}

// Holds reports whether absolute position pos is still retained.
func (r *Ring[T]) Holds(pos uint64) bool {
	return pos >= r.Tail() && pos < r.head
}

// At returns the value at absolute position pos.
// The caller must check Holds first.
func (r *Ring[T]) At(pos uint64) T {
	return r.buf[pos&r.mask]
}

// Reset empties the ring and zeroes the storage.
// Absolute positions keep counting from where they were.
func (r *Ring[T]) Reset() {
	clear(r.buf)
	r.base = r.head
}
