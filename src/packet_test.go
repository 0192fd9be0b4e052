package fskrx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingFrom(bytes []byte) *PendingPacket {
	var p PendingPacket
	for i, b := range bytes {
		p.append(b)
		if i == HeaderBytes-1 {
			p.setHeader()
		}
	}

	return &p
}

func TestPendingPacketDecode(t *testing.T) {
	var g = GenPacket{
		PDUType: 0x02,
		Address: [6]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66},
		AD:      []byte{0x02, 0x01, 0x06},
	}
	var crc = g.CRC()
	var raw = append(g.PDU(), crc[:]...)

	var p = pendingFrom(raw)
	assert.Equal(t, 9+CRCBytes, p.payloadBytes())

	var d = p.decode(-30, 7)

	assert.Equal(t, [6]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}, d.DeviceID)
	assert.Equal(t, "112233445566", d.MAC())
	assert.Equal(t, uint64(0x112233445566), d.Key())
	assert.Equal(t, uint8(2), d.Type)
	assert.Equal(t, uint8(9), d.Size)
	assert.Equal(t, 3, d.DataLen)
	assert.Equal(t, []byte{0x02, 0x01, 0x06}, d.Payload())
	assert.Equal(t, "020106", d.DataHex())
	assert.Equal(t, crc, d.CRC)
	assert.Equal(t, -30, d.DB)
	assert.Equal(t, 7, d.Channel)
}

func TestPendingPacketHeaderFlags(t *testing.T) {
	// Upper header bits are flags, not part of the type.
	var p = pendingFrom([]byte{0xC4, 0x06})
	assert.Equal(t, uint8(0x04), p.pduType)
	assert.Equal(t, 6, p.payloadLen)
}

func TestPendingPacketShortPayload(t *testing.T) {
	// Declared length too short to even hold an address.
	var p = pendingFrom([]byte{0x00, 0x02, 0xAA, 0xBB, 1, 2, 3})

	var d = p.decode(0, 0)
	assert.Equal(t, 0, d.DataLen)
	assert.Equal(t, [3]byte{1, 2, 3}, d.CRC)
}

func TestPendingPacketReuse(t *testing.T) {
	var g = GenPacket{
		PDUType: 0x02,
		Address: [6]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66},
		AD:      NamedAdvert("first"),
	}
	var crc = g.CRC()

	var p = pendingFrom(append(g.PDU(), crc[:]...))
	require.Equal(t, g.Address, p.decode(0, 0).DeviceID)

	// Zero length payload: header plus CRC, 5 bytes in all.
	p.reset()
	for i, b := range []byte{0x00, 0x00, 0xC0, 0xC1, 0xC2} {
		p.append(b)
		if i == HeaderBytes-1 {
			p.setHeader()
		}
	}

	var d = p.decode(0, 0)
	assert.Equal(t, [6]byte{0, 0, 0, 0xC2, 0xC1, 0xC0}, d.DeviceID)
	assert.Equal(t, [3]byte{0xC0, 0xC1, 0xC2}, d.CRC)
	assert.Equal(t, 0, d.DataLen)
	assert.Equal(t, make([]byte, PacketBufferSize-5), p.buf[5:], "nothing left from the first packet")
}

func TestSeedFromSync(t *testing.T) {
	var p PendingPacket
	p.seedFromSync(SyncWordBLE)

	assert.Equal(t, [6]byte{0x8E, 0x89, 0xBE, 0xD6, 0x01, 0x02}, p.deviceID)

	p.reset()
	assert.Equal(t, [6]byte{}, p.deviceID)
	assert.Equal(t, 0, p.length)
}

func TestParseLocalName(t *testing.T) {
	assert.Equal(t, "", ParseLocalName(nil))
	assert.Equal(t, "beacon", ParseLocalName(NamedAdvert("beacon")))

	var short = []byte{0x02, 0x01, 0x06, 0x04, adTypeShortName, 'a', 'b', 'c'}
	assert.Equal(t, "abc", ParseLocalName(short))

	// Complete name wins whichever comes first.
	var both = append(append([]byte{}, short...), 0x05, adTypeCompleteName, 'a', 'b', 'c', 'd')
	assert.Equal(t, "abcd", ParseLocalName(both))

	// Non printable shown as dots.
	assert.Equal(t, "a.b", ParseLocalName([]byte{0x04, adTypeCompleteName, 'a', 0x00, 'b'}))

	// Truncated structure is ignored.
	assert.Equal(t, "", ParseLocalName([]byte{0x09, adTypeCompleteName, 'a'}))
}

func TestParseStateString(t *testing.T) {
	require.Equal(t, "Begin", StateBegin.String())
	assert.Equal(t, "Header", StateHeader.String())
	assert.Equal(t, "Payload", StatePayload.String())
	assert.Equal(t, "ParseState(9)", ParseState(9).String())
}
