package fskrx

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCaptureRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var samples = rapid.SliceOf(complex8Gen()).Draw(t, "samples")
		var bufLen = rapid.IntRange(1, 100).Draw(t, "buf")

		var buf bytes.Buffer
		require.NoError(t, WriteCapture(&buf, samples))
		require.Equal(t, 2*len(samples), buf.Len())

		var r = NewCaptureReader(&buf)
		var dst = make([]Complex8, bufLen)
		var got []Complex8

		for {
			var n, err = r.Read(dst)
			got = append(got, dst[:n]...)

			if err == io.EOF {
				break
			}
			require.NoError(t, err)
		}

		require.Equal(t, len(samples), len(got))
		if len(samples) > 0 {
			require.Equal(t, samples, got)
		}
	})
}

func TestCaptureSigned(t *testing.T) {
	var r = NewCaptureReader(bytes.NewReader([]byte{0x80, 0x7F, 0xFF, 0x01}))
	var dst = make([]Complex8, 4)

	var n, err = r.Read(dst)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Equal(t, Complex8{I: -128, Q: 127}, dst[0])
	assert.Equal(t, Complex8{I: -1, Q: 1}, dst[1])

	n, err = r.Read(dst)
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
}

func TestCaptureShortRead(t *testing.T) {
	var r = NewCaptureReader(bytes.NewReader([]byte{1, 2, 3}))
	var dst = make([]Complex8, 4)

	var n, err = r.Read(dst)
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, ErrShortRead)
}
