package fskrx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Channel numbers, their frequencies, and the automatic
 *		channel hopping timer.
 *
 *------------------------------------------------------------------*/

const (
	BaseFrequency    uint64 = 902_075_000
	ChannelSpacing   uint64 = 25_000
	NumChannels             = 16
	InvalidFrequency uint64 = math.MaxUint64
)

var ErrInvalidChannel = errors.New("invalid channel")

// ChannelFrequency maps channel 0-15 to Hz.  Anything else is InvalidFrequency.
func ChannelFrequency(channel int) uint64 {
	if channel < 0 || channel >= NumChannels {
		return InvalidFrequency
	}

	return BaseFrequency + uint64(channel)*ChannelSpacing
}

// FormatFrequency for humans, MHz with 3 decimals, or "invalid".
func FormatFrequency(hz uint64) string {
	if hz == InvalidFrequency {
		return "invalid"
	}

	return fmt.Sprintf("%d.%03d MHz", hz/1_000_000, (hz%1_000_000)/1000)
}

func fmtHex32(v uint32) string {
	return fmt.Sprintf("0x%08X", v)
}

/*-------------------------------------------------------------------
 *
 * Name:        AutoChannel
 *
 * Purpose:     Hop between a small set of channels.
 *
 * Description:	On every tick pick one of the channels at random and
 *		send a configure message.  The tick defaults to 100 ms
 *		(6 display frames at 60 Hz).
 *
 *--------------------------------------------------------------------*/

var DefaultAutoChannels = []int{37, 38, 39}

const DefaultAutoChannelPeriod = 100 * time.Millisecond

type AutoChannel struct {
	Channels []int
	Period   time.Duration
	Base     ChannelConfig // Everything except the channel number.

	// Configure receives each new config, typically Processor.OnConfigure.
	Configure func(ChannelConfig) bool

	rng *rand.Rand
}

func NewAutoChannel(base ChannelConfig, configure func(ChannelConfig) bool) *AutoChannel {
	return &AutoChannel{
		Channels:  DefaultAutoChannels,
		Period:    DefaultAutoChannelPeriod,
		Base:      base,
		Configure: configure,
		rng:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)), //nolint:gosec
	}
}

// Pick chooses the next channel, uniformly.
func (a *AutoChannel) Pick() int {
	return a.Channels[a.rng.IntN(len(a.Channels))]
}

// Tick does one hop.
func (a *AutoChannel) Tick() int {
	var cfg = a.Base
	cfg.Channel = a.Pick()

	if !a.Configure(cfg) {
		Logger.Warn("Command queue full, channel hop skipped", "channel", cfg.Channel)
	}

	return cfg.Channel
}

// Run hops until ctx is cancelled.
func (a *AutoChannel) Run(ctx context.Context) {
	Assert(len(a.Channels) > 0 && a.Period > 0)

	var ticker = time.NewTicker(a.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Tick()
		}
	}
}
