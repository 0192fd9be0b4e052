package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:   	Copy decoded packets to a pseudo terminal or serial port.
 *
 * Description:	Some applications would rather open a tty than a
 *		socket.  We supply a pseudo terminal and print its name
 *		(and optionally make a symlink with a fixed name,
 *		because the pty name changes from run to run).
 *
 *		If no one is reading from the other end, the buffer
 *		space eventually fills up and a write would block.  So
 *		writes happen on their own goroutine fed by a bounded
 *		queue, and text is dropped when the queue is full.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/creack/pty"
)

const (
	DefaultPtySymlink = "/tmp/fskrx"
	streamQueueSize   = 32
)

// streamSink writes packet text to w without ever blocking Publish.
type streamSink struct {
	w       io.Writer
	queue   chan []byte
	dropped atomic.Uint64
	done    sync.WaitGroup
	once    sync.Once
}

func newStreamSink(w io.Writer) *streamSink {
	var s = &streamSink{
		w:     w,
		queue: make(chan []byte, streamQueueSize),
	}

	s.done.Add(1)
	go s.writeLoop()

	return s
}

func (s *streamSink) writeLoop() {
	defer s.done.Done()

	for msg := range s.queue {
		if _, err := s.w.Write(msg); err != nil {
			Logger.Debug("Stream write failed", "err", err)
		}
	}
}

func (s *streamSink) Publish(pkt *DecodedPacket, _ time.Time) error {
	select {
	case s.queue <- []byte(FormatPacketLog(pkt)):
	default:
		s.dropped.Add(1)
	}

	return nil
}

// Dropped is the number of packets not written because the reader was too slow.
func (s *streamSink) Dropped() uint64 {
	return s.dropped.Load()
}

// stop drains the queue and waits for the writer.
func (s *streamSink) stop() {
	s.once.Do(func() {
		close(s.queue)
		s.done.Wait()
	})
}

type PtySink struct {
	*streamSink

	master  *os.File // My end.
	slave   *os.File // Name of this is given to the user.
	symlink string
}

// NewPtySink creates the pseudo terminal.  symlink may be empty.
func NewPtySink(symlink string) (*PtySink, error) {
	var ptmx, pts, err = pty.Open()
	if err != nil {
		return nil, fmt.Errorf("create pseudo terminal: %w", err)
	}

	var p = &PtySink{
		streamSink: newStreamSink(ptmx),
		master:     ptmx,
		slave:      pts,
	}

	Logger.Info("Packets are available on pseudo terminal", "name", pts.Name())

	if symlink != "" {
		os.Remove(symlink)

		if err := os.Symlink(pts.Name(), symlink); err != nil {
			Logger.Warn("Can't create symlink to pseudo terminal", "symlink", symlink, "err", err)
		} else {
			p.symlink = symlink
			Logger.Info("Created symlink", "symlink", symlink, "target", pts.Name())
		}
	}

	return p, nil
}

// Name of the slave side, for the other application to open.
func (p *PtySink) Name() string {
	return p.slave.Name()
}

// Slave is the other end, mostly for tests.
func (p *PtySink) Slave() *os.File {
	return p.slave
}

func (p *PtySink) Close() error {
	p.stop()

	if p.symlink != "" {
		os.Remove(p.symlink)
	}

	return errors.Join(p.master.Close(), p.slave.Close())
}
