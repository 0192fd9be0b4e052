package fskrx

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestChannelFrequency(t *testing.T) {
	assert.Equal(t, uint64(902_075_000), ChannelFrequency(0))
	assert.Equal(t, uint64(902_450_000), ChannelFrequency(15))
	assert.Equal(t, InvalidFrequency, ChannelFrequency(16))
	assert.Equal(t, InvalidFrequency, ChannelFrequency(-1))

	assert.Equal(t, "902.075 MHz", FormatFrequency(ChannelFrequency(0)))
	assert.Equal(t, "902.450 MHz", FormatFrequency(ChannelFrequency(15)))
	assert.Equal(t, "invalid", FormatFrequency(ChannelFrequency(37)))

	assert.Equal(t, "0x8E89BED6", fmtHex32(SyncWordBLE))
}

func TestChannelFrequencySpacing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var c = rapid.IntRange(0, NumChannels-2).Draw(t, "channel")
		require.Equal(t, ChannelSpacing, ChannelFrequency(c+1)-ChannelFrequency(c))
	})
}

func newTestAutoChannel(configure func(ChannelConfig) bool) *AutoChannel {
	var a = NewAutoChannel(ChannelConfig{Taps: TapsRRC}, configure) //nolint:exhaustruct
	a.rng = rand.New(rand.NewPCG(1, 2))

	return a
}

func TestAutoChannelTick(t *testing.T) {
	var got []ChannelConfig
	var a = newTestAutoChannel(func(cfg ChannelConfig) bool {
		got = append(got, cfg)
		return true
	})

	var seen = map[int]bool{}
	for range 300 {
		var c = a.Tick()
		assert.Contains(t, DefaultAutoChannels, c)
		seen[c] = true
	}

	assert.Len(t, seen, len(DefaultAutoChannels), "every channel gets picked")
	require.Len(t, got, 300)
	for _, cfg := range got {
		assert.Equal(t, TapsRRC, cfg.Taps, "rest of the config is kept")
	}
}

func TestAutoChannelSkipsWhenQueueFull(t *testing.T) {
	var a = newTestAutoChannel(func(ChannelConfig) bool { return false })

	// Nothing to do but not fall over.
	assert.Contains(t, DefaultAutoChannels, a.Tick())
}

func TestAutoChannelRun(t *testing.T) {
	var hops atomic.Int32
	var a = newTestAutoChannel(func(ChannelConfig) bool {
		hops.Add(1)
		return true
	})
	a.Period = time.Millisecond

	var ctx, cancel = context.WithCancel(context.Background())
	var done = make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return hops.Load() >= 3 }, 5*time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestAutoChannelThroughProcessor(t *testing.T) {
	var p = NewProcessor(NewDispatcher(8))
	var a = NewAutoChannel(ChannelConfig{}, p.OnConfigure) //nolint:exhaustruct

	var c = a.Tick()
	p.Process(Silence(DefaultBufferSamples))

	assert.True(t, p.Configured())
	assert.Equal(t, c, p.Config().Channel)
}
