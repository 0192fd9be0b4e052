package fskrx

import (
	"context"
	"sync/atomic"
	"time"
)

/*------------------------------------------------------------------
 *
 * Purpose:   	Queue of decoded packets from the processor to the
 *		consumer.
 *
 * Description: The processor runs once per sample buffer and must
 *		never wait for the consumer.  When the queue is full the
 *		oldest packet is thrown away to make room for the newest
 *		one (drop-oldest); the newest is the most useful for the
 *		recent entries list.
 *
 *		One producer.  The consumer may read at its own pace.
 *
 *---------------------------------------------------------------*/

const DefaultQueueSize = 64

type Dispatcher struct {
	ch      chan DecodedPacket
	sent    atomic.Uint64
	dropped atomic.Uint64
}

func NewDispatcher(size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}

	return &Dispatcher{ch: make(chan DecodedPacket, size)}
}

// Send queues a packet without blocking.  Returns false only if the
// packet itself could not be queued.
func (d *Dispatcher) Send(pkt DecodedPacket) bool {
	select {
	case d.ch <- pkt:
		d.sent.Add(1)
		return true
	default:
	}

	// Full.  Drop the oldest.
	select {
	case <-d.ch:
		d.dropped.Add(1)
	default:
	}

	select {
	case d.ch <- pkt:
		d.sent.Add(1)
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// WaitForRoom blocks until n more packets could be queued without a
// drop.  Only for inputs that are not real time, such as capture files,
// and only between calls to Process.
func (d *Dispatcher) WaitForRoom(ctx context.Context, n int) {
	n = min(n, cap(d.ch))
	if cap(d.ch)-len(d.ch) >= n {
		return
	}

	var ticker = time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for cap(d.ch)-len(d.ch) < n {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Packets is the consumer side.
func (d *Dispatcher) Packets() <-chan DecodedPacket {
	return d.ch
}

// Close is called by the producer when no more packets will come.
func (d *Dispatcher) Close() {
	close(d.ch)
}

func (d *Dispatcher) Sent() uint64 {
	return d.sent.Load()
}

func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}
