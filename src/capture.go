package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:	Read and write raw sample captures.
 *
 * Description:	The format is the one radios and SDR tools dump: signed
 *		8 bit I then Q, interleaved, no header.  Usually named
 *		*.c8 or *.cs8.
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

const (
	DefaultBufferSamples = 2048 // One radio buffer at 4 MHz.
	SampleRate           = 4_000_000
)

var ErrShortRead = errors.New("capture ends in the middle of a sample")

type CaptureReader struct {
	r   *bufio.Reader
	raw []byte
}

func NewCaptureReader(r io.Reader) *CaptureReader {
	return &CaptureReader{r: bufio.NewReader(r)} //nolint:exhaustruct
}

/*------------------------------------------------------------------
 *
 * Function:	Read
 *
 * Purpose:	Fill dst with the next samples.
 *
 * Returns:	Number of samples.  Less than len(dst) only at the end of
 *		the capture.  io.EOF when there is nothing left.
 *		ErrShortRead if the last sample is missing its Q byte.
 *
 *------------------------------------------------------------------*/

func (c *CaptureReader) Read(dst []Complex8) (int, error) {
	if cap(c.raw) < 2*len(dst) {
		c.raw = make([]byte, 2*len(dst))
	}
	var raw = c.raw[:2*len(dst)]

	var nb, err = io.ReadFull(c.r, raw)

	var n = nb / 2
	for i := range n {
		dst[i] = Complex8{I: int8(raw[2*i]), Q: int8(raw[2*i+1])}
	}

	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		return 0, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		if nb%2 != 0 {
			return n, ErrShortRead
		}

		return n, nil
	}

	return n, fmt.Errorf("read capture: %w", err)
}

// WriteCapture writes samples in the same format.
func WriteCapture(w io.Writer, samples []Complex8) error {
	var raw = make([]byte, 2*len(samples))
	for i, s := range samples {
		raw[2*i] = byte(s.I)
		raw[2*i+1] = byte(s.Q)
	}

	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write capture: %w", err)
	}

	return nil
}
