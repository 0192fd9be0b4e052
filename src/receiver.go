package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:   	Run the whole receiver: samples in, packets out.
 *
 * Description:	Two goroutines.
 *
 *		The receive loop reads sample buffers and hands each one
 *		to the Processor.  It stops between buffers when the
 *		context is cancelled or the input ends.
 *
 *		The consumer takes decoded packets from the Dispatcher
 *		and does everything slow: the recent entries list, the
 *		watchlist, the log file, printing, and the sinks.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var ErrNotConfigured = errors.New("receiver has not been configured")

// SampleSource is anything that produces raw sample buffers, such as
// a CaptureReader.  Read returns io.EOF at the end.
type SampleSource interface {
	Read(dst []Complex8) (int, error)
}

type ReceiverConfig struct {
	Sort          SortMode
	Filter        string
	IncludeName   bool
	HexDump       bool
	Quiet         bool // No per packet text, only the summary.
	StatsInterval time.Duration
	BufferSamples int
	QueueSize     int

	// Lossless waits for the consumer instead of dropping packets.
	// For capture files, where there is no real time to keep up with.
	Lossless bool
}

// Worst case packets from one buffer: a sync only report plus the
// shortest possible packet for every 72 symbols.
func maxPacketsPerBuffer(samples int) int {
	return 2 * (samples/DecimateFactor/(SyncWordBits+8*(HeaderBytes+CRCBytes)) + 1)
}

type Receiver struct {
	Processor  *Processor
	Dispatcher *Dispatcher
	Recent     *RecentEntries
	Watch      *Watchlist
	Log        *PacketLog // nil for no log file.
	Sinks      Sinks
	Out        io.Writer

	// Now is the clock for entry and log time stamps.
	Now func() time.Time

	cfg        ReceiverConfig
	configured bool
	stats      *SampleStats
}

func NewReceiver(cfg ReceiverConfig, out io.Writer) *Receiver {
	if cfg.BufferSamples <= 0 {
		cfg.BufferSamples = DefaultBufferSamples
	}

	var d = NewDispatcher(cfg.QueueSize)
	var recent = NewRecentEntries()
	recent.SetFilter(cfg.Filter)
	recent.SetIncludeName(cfg.IncludeName)

	return &Receiver{ //nolint:exhaustruct
		Processor:  NewProcessor(d),
		Dispatcher: d,
		Recent:     recent,
		Watch:      NewWatchlist(),
		Out:        out,
		Now:        time.Now,
		cfg:        cfg,
		stats:      NewSampleStats(cfg.StatsInterval),
	}
}

// Configure queues a channel configuration for the processor.
func (r *Receiver) Configure(cfg ChannelConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if !r.Processor.OnConfigure(cfg) {
		return errors.New("command queue full")
	}

	r.configured = true

	return nil
}

/*-------------------------------------------------------------------
 *
 * Name:        Run
 *
 * Purpose:     Process src until it ends or ctx is cancelled.
 *
 * Returns:	nil at the end of the input or on cancel, otherwise the
 *		read error.
 *
 *--------------------------------------------------------------------*/

func (r *Receiver) Run(ctx context.Context, src SampleSource) error {
	if !r.configured {
		return ErrNotConfigured
	}

	var done = make(chan error, 1)
	go func() {
		done <- r.receiveLoop(ctx, src)
		r.Dispatcher.Close()
	}()

	for pkt := range r.Dispatcher.Packets() {
		r.consume(&pkt)
	}

	var err = <-done

	if !r.cfg.Quiet {
		fmt.Fprintf(r.Out, "\n")
		r.Recent.Dump(r.Out, DefaultRowWidth)
	}

	var ps = r.Processor.Stats()
	Logger.Info("Done", "buffers", ps.Buffers, "sync", ps.SyncHits, "packets", ps.Packets,
		"devices", r.Recent.Len(), "dropped", r.Dispatcher.Dropped())

	return err
}

func (r *Receiver) receiveLoop(ctx context.Context, src SampleSource) error {
	var buf = make([]Complex8, r.cfg.BufferSamples)

	for {
		if ctx.Err() != nil {
			return nil
		}

		if r.cfg.Lossless {
			r.Dispatcher.WaitForRoom(ctx, maxPacketsPerBuffer(len(buf)))
		}

		var n, err = src.Read(buf)
		if n > 0 {
			r.Processor.Process(buf[:n])
		}

		if report := r.stats.Add(n, r.Processor.Stats(), r.Now()); report != "" {
			Logger.Info(report)
		}

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("receive: %w", err)
		}
	}
}

func (r *Receiver) consume(pkt *DecodedPacket) {
	var now = r.Now()

	if pkt.SyncOnly {
		if !r.cfg.Quiet {
			fmt.Fprintf(r.Out, "Sync:%s %d dB\n", pkt.MAC(), pkt.DB)
		}
		r.publish(pkt, now)

		return
	}

	var e = r.Recent.OnPacket(pkt, now)

	if r.Watch.Check(e) {
		Logger.Info("Watchlist match", "device", pkt.MAC(), "name", e.NameString,
			"found", r.Watch.Found(), "total", r.Watch.Total())
	}

	r.Recent.Sort(r.cfg.Sort)

	if !r.cfg.Quiet && MatchesFilter(e, r.Recent.Filter()) {
		fmt.Fprintf(r.Out, "Device ID:%s Len:%d\nData:%s\n", pkt.MAC(), pkt.Size, pkt.DataHex())

		if r.cfg.HexDump {
			hex_dump(r.Out, pkt.Payload())
		}
	}

	if r.Log != nil {
		if err := r.Log.Write(pkt, now); err != nil {
			Logger.Error("Log file", "err", err)
		}
	}

	r.publish(pkt, now)
}

func (r *Receiver) publish(pkt *DecodedPacket, now time.Time) {
	if err := r.Sinks.Publish(pkt, now); err != nil {
		Logger.Warn("Sink", "err", err)
	}
}

// Close releases the log file and the sinks.
func (r *Receiver) Close() error {
	if r.Log != nil {
		r.Log.Close()
	}

	return r.Sinks.Close()
}
