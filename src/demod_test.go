package fskrx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDemodBitQuarterTurns(t *testing.T) {
	var a = Complex16{I: 1000, Q: 0}
	var ccw = Complex16{I: 0, Q: 1000}
	var cw = Complex16{I: 0, Q: -1000}

	assert.Equal(t, uint8(1), DemodBit(a, ccw))
	assert.Equal(t, uint8(0), DemodBit(a, cw))
	assert.Equal(t, uint8(0), DemodBit(a, a), "no rotation is 0")
	assert.Equal(t, uint8(0), DemodBit(Complex16{}, Complex16{}))
}

func TestDemodBitNoOverflow(t *testing.T) {
	// Products of full scale values overflow 32 bits.
	var a = Complex16{I: 32767, Q: -32768}
	var b = Complex16{I: 32767, Q: 32767}

	assert.Equal(t, uint8(1), DemodBit(a, b))
	assert.Equal(t, uint8(0), DemodBit(b, a))
}

func complex16Gen() *rapid.Generator[Complex16] {
	return rapid.Custom(func(t *rapid.T) Complex16 {
		return Complex16{I: rapid.Int16().Draw(t, "I"), Q: rapid.Int16().Draw(t, "Q")}
	})
}

func TestDemodBitIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var a = complex16Gen().Draw(t, "a")
		var b = complex16Gen().Draw(t, "b")

		var first = DemodBit(a, b)
		assert.Equal(t, first, DemodBit(a, b))

		// Reversing the pair reverses the rotation, unless there is none.
		var cross = int64(a.I)*int64(b.Q) - int64(b.I)*int64(a.Q)
		if cross != 0 {
			assert.NotEqual(t, first, DemodBit(b, a))
		}
	})
}

func TestModulateSymbolsDemodulates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var bits = rapid.SliceOf(rapid.Uint8Range(0, 1)).Draw(t, "bits")

		var syms = ModulateSymbols(bits, 1000)

		for k, b := range bits {
			assert.Equal(t, b, DemodBit(syms[k], syms[k+1]))
		}
	})
}
