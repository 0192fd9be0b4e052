package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:   	Copy decoded packets to a serial port.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"slices"

	"github.com/pkg/term"
)

var SerialSpeeds = []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200}

const DefaultSerialSpeed = 115200

type SerialSink struct {
	*streamSink

	fd *term.Term
}

/*-------------------------------------------------------------------
 *
 * Name:	NewSerialSink
 *
 * Purpose:	Open serial port.
 *
 * Inputs:	devicename	- Usually like /dev/ttyUSB0.
 *				  Could be /dev/rfcomm0 for Bluetooth.
 *
 *		baud		- Speed.  1200, 4800, 9600 bps, etc.
 *				  If 0, leave it alone.
 *
 *---------------------------------------------------------------*/

func NewSerialSink(devicename string, baud int) (*SerialSink, error) {
	var fd, err = term.Open(devicename, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", devicename, err)
	}

	switch {
	case baud == 0: /* Leave it alone. */
	case slices.Contains(SerialSpeeds, baud):
		if err := fd.SetSpeed(baud); err != nil {
			fd.Close()
			return nil, fmt.Errorf("serial port %s speed %d: %w", devicename, baud, err)
		}
	default:
		Logger.Warn("Unsupported serial speed, using default", "speed", baud, "default", DefaultSerialSpeed)

		if err := fd.SetSpeed(DefaultSerialSpeed); err != nil {
			fd.Close()
			return nil, fmt.Errorf("serial port %s speed %d: %w", devicename, DefaultSerialSpeed, err)
		}
	}

	Logger.Info("Packets are copied to serial port", "device", devicename)

	return &SerialSink{streamSink: newStreamSink(fd), fd: fd}, nil
}

func (s *SerialSink) Close() error {
	s.stop()

	return s.fd.Close() //nolint:wrapcheck
}
