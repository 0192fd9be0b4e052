package fskrx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPeakPowerDB(t *testing.T) {
	assert.Equal(t, MinPowerDB, PeakPowerDB(nil))
	assert.Equal(t, MinPowerDB, PeakPowerDB(Silence(100)))

	assert.Equal(t, 3, PeakPowerDB([]Complex8{{I: -128, Q: -128}}), "both components at full scale")
	assert.Equal(t, 0, PeakPowerDB([]Complex8{{I: 127, Q: 0}}))
	assert.Equal(t, -6, PeakPowerDB([]Complex8{{I: 64, Q: 0}, {I: 1, Q: 1}}))
	assert.Equal(t, -42, PeakPowerDB([]Complex8{{I: 0, Q: -1}}))
}

func TestMag2ToDBMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var a = rapid.Float64Range(0, 4).Draw(t, "a")
		var b = rapid.Float64Range(0, 4).Draw(t, "b")

		if a <= b {
			assert.LessOrEqual(t, mag2ToDB(a), mag2ToDB(b))
		} else {
			assert.GreaterOrEqual(t, mag2ToDB(a), mag2ToDB(b))
		}
	})
}
