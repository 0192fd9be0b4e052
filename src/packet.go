package fskrx

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Packet being assembled and packet handed to the consumer.
 *
 * Description:	After the access address comes the PDU:
 *
 *		  byte 0	header, PDU type in the low 4 bits.
 *		  byte 1	payload length.
 *		  byte 2..7	advertiser address, least significant byte first.
 *		  byte 8..	advertising data.
 *		  last 3	CRC.
 *
 *		Nothing is validated.  A false sync simply produces a
 *		packet full of noise.
 *
 *------------------------------------------------------------------*/

const (
	PacketBufferSize = 512 // Working buffer for header + payload + CRC.

	HeaderBytes   = 2
	CRCBytes      = 3
	DeviceIDBytes = 6

	// Header and device id come before the data.
	dataOffset = HeaderBytes + DeviceIDBytes

	MaxDataLen = 255
)

type ParseState int

const (
	StateBegin ParseState = iota
	StateHeader
	StatePayload
)

func (s ParseState) String() string {
	switch s {
	case StateBegin:
		return "Begin"
	case StateHeader:
		return "Header"
	case StatePayload:
		return "Payload"
	}

	return fmt.Sprintf("ParseState(%d)", int(s))
}

// PendingPacket accumulates bytes between sync and the end of the payload.
type PendingPacket struct {
	buf        [PacketBufferSize]byte
	length     int // Write cursor.
	payloadLen int
	pduType    uint8
	deviceID   [DeviceIDBytes]byte
}

// reset also zeroes the bytes written, so a short packet can never show
// bytes of the one before.
func (p *PendingPacket) reset() {
	clear(p.buf[:p.length])
	p.length = 0
	p.payloadLen = 0
	p.pduType = 0
	p.deviceID = [DeviceIDBytes]byte{}
}

// seedFromSync fills in a device id from the captured sync bits.
// It is replaced by the real address once the payload is complete.
func (p *PendingPacket) seedFromSync(captured uint32) {
	binary.BigEndian.PutUint32(p.deviceID[:4], captured)
	p.deviceID[4] = 0x01
	p.deviceID[5] = 0x02
}

func (p *PendingPacket) room() int {
	return PacketBufferSize - p.length
}

func (p *PendingPacket) append(b byte) {
	Assert(p.length < PacketBufferSize)
	p.buf[p.length] = b
	p.length++
}

func (p *PendingPacket) setHeader() {
	p.pduType = p.buf[0] & 0x0F
	p.payloadLen = int(p.buf[1])
}

// payloadBytes is the number of bytes the Payload state must read,
// clamped to what the working buffer can hold.
func (p *PendingPacket) payloadBytes() int {
	return min(p.payloadLen+CRCBytes, p.room())
}

// DecodedPacket is what the consumer receives.  Fixed size, no pointers,
// so sending one does not allocate.
type DecodedPacket struct {
	DeviceID [DeviceIDBytes]byte
	Type     uint8
	Size     uint8 // Declared payload length.
	DataLen  int
	Data     [MaxDataLen]byte
	CRC      [CRCBytes]byte
	DB       int
	Channel  int

	// SyncOnly is set for packets reported at sync time, before any
	// header was read.  DeviceID then holds the sync bits.
	SyncOnly bool
}

func (p *PendingPacket) decode(db int, channel int) DecodedPacket {
	var d DecodedPacket

	d.DB = db
	d.Channel = channel
	d.Type = p.pduType
	d.Size = uint8(p.payloadLen)

	// Address is sent least significant byte first.
	for i := range DeviceIDBytes {
		if j := dataOffset - 1 - i; j < p.length {
			d.DeviceID[i] = p.buf[j]
		}
	}

	var n = 0
	for i := 0; i < p.payloadLen-DeviceIDBytes && dataOffset+i < p.length && n < MaxDataLen; i++ {
		d.Data[n] = p.buf[dataOffset+i]
		n++
	}
	d.DataLen = n

	var crcStart = HeaderBytes + p.payloadLen
	if crcStart+CRCBytes <= p.length {
		copy(d.CRC[:], p.buf[crcStart:crcStart+CRCBytes])
	}

	return d
}

// Payload is the valid part of Data.
func (d *DecodedPacket) Payload() []byte {
	return d.Data[:d.DataLen]
}

// MAC is the device id as 12 uppercase hex digits, no separators.
func (d *DecodedPacket) MAC() string {
	return strings.ToUpper(hex.EncodeToString(d.DeviceID[:]))
}

// Key is the device id as a 48 bit number, used to group repeats.
func (d *DecodedPacket) Key() uint64 {
	var k uint64
	for _, b := range d.DeviceID {
		k = k<<8 | uint64(b)
	}

	return k & 0xFFFFFFFFFFFF
}

// DataHex is the payload as uppercase hex pairs.
func (d *DecodedPacket) DataHex() string {
	return strings.ToUpper(hex.EncodeToString(d.Payload()))
}

/*------------------------------------------------------------------
 *
 * Name:	ParseLocalName
 *
 * Purpose:	Pull a device name out of advertising data.
 *
 * Description:	Advertising data is a sequence of [length][type][value]
 *		structures where length counts the type byte.  Type 0x09
 *		is the complete local name, 0x08 a shortened one.  The
 *		complete name wins if both are present.
 *
 *------------------------------------------------------------------*/

const (
	adTypeShortName    = 0x08
	adTypeCompleteName = 0x09
)

func ParseLocalName(data []byte) string {
	var short string

	for i := 0; i < len(data); {
		var length = int(data[i])
		if length == 0 || i+1+length > len(data) {
			break
		}

		var adType = data[i+1]
		var value = data[i+2 : i+1+length]

		switch adType {
		case adTypeCompleteName:
			return printable(value)
		case adTypeShortName:
			short = printable(value)
		}

		i += 1 + length
	}

	return short
}

func printable(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c >= 0x20 && c <= 0x7E {
			sb.WriteByte(c)
		} else {
			sb.WriteByte('.')
		}
	}

	return sb.String()
}
