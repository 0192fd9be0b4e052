package fskrx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func numberedPacket(n int) DecodedPacket {
	var pkt DecodedPacket
	pkt.DeviceID = GenAddress(n)

	return pkt
}

func TestDispatcherDropsOldest(t *testing.T) {
	var d = NewDispatcher(2)

	for i := range 3 {
		assert.True(t, d.Send(numberedPacket(i)))
	}

	assert.Equal(t, numberedPacket(1).DeviceID, (<-d.Packets()).DeviceID)
	assert.Equal(t, numberedPacket(2).DeviceID, (<-d.Packets()).DeviceID)
	assert.Equal(t, uint64(3), d.Sent())
	assert.Equal(t, uint64(1), d.Dropped())
}

func TestDispatcherKeepsNewest(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var size = rapid.IntRange(1, 16).Draw(t, "size")
		var count = rapid.IntRange(0, 64).Draw(t, "count")

		var d = NewDispatcher(size)
		for i := range count {
			d.Send(numberedPacket(i))
		}
		d.Close()

		var got []int
		for pkt := range d.Packets() {
			got = append(got, int(pkt.DeviceID[5]))
		}

		var kept = min(size, count)
		require.Len(t, got, kept)
		for j, n := range got {
			require.Equal(t, count-kept+j, n)
		}
		require.Equal(t, uint64(count-kept), d.Dropped())
	})
}

func TestDispatcherDefaultSize(t *testing.T) {
	var d = NewDispatcher(0)
	assert.Equal(t, DefaultQueueSize, cap(d.Packets()))
}

func TestDispatcherWaitForRoom(t *testing.T) {
	var d = NewDispatcher(4)
	for i := range 4 {
		d.Send(numberedPacket(i))
	}

	var done = make(chan struct{})
	go func() {
		d.WaitForRoom(context.Background(), 2)
		close(done)
	}()

	<-d.Packets()
	select {
	case <-done:
		t.Fatal("returned with only one free slot")
	case <-time.After(20 * time.Millisecond):
	}

	<-d.Packets()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("still waiting with two free slots")
	}
}

func TestDispatcherWaitForRoomCancel(t *testing.T) {
	var d = NewDispatcher(1)
	d.Send(numberedPacket(0))

	var ctx, cancel = context.WithCancel(context.Background())
	cancel()

	// Would never return otherwise.
	d.WaitForRoom(ctx, 1)
	assert.Len(t, d.Packets(), 1)
}

func TestDispatcherWaitForRoomCancelWhileWaiting(t *testing.T) {
	var d = NewDispatcher(1)
	d.Send(numberedPacket(0))

	var ctx, cancel = context.WithCancel(context.Background())
	var done = make(chan struct{})
	go func() {
		d.WaitForRoom(ctx, 1)
		close(done)
	}()

	time.AfterFunc(10*time.Millisecond, cancel)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cancel did not wake the wait")
	}
	assert.Len(t, d.Packets(), 1)
}
