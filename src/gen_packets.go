package fskrx

/*------------------------------------------------------------------
 *
 * Name:	gen_packets
 *
 * Purpose:	Generate advertising packets as raw samples, for testing.
 *
 * Description:	Builds the bits that go on air:
 *
 *			preamble	8 bits alternating
 *			access address	32 bits, LSB first
 *			header		2 bytes
 *			AdvA		6 bytes, least significant first
 *			AD structures
 *			CRC		3 bytes
 *
 *		then modulates them as continuous phase FSK, a quarter
 *		turn per symbol, counter-clockwise for 1.  Whitening is
 *		not applied; the receiver does not undo it either.
 *
 * Examples:	fskrx-gen -o z.c8
 *		fskrx z.c8
 *
 *		fskrx-gen -N 100 -n beacon -o z.c8
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

const (
	preambleBits = 8
	leadInBits   = 16
	trailBits    = 8

	DefaultAmplitude = 100

	adTypeFlags = 0x01

	crc24Init = 0x555555
	crc24Mask = 0x5A6000 // x^24 + x^10 + x^9 + x^6 + x^4 + x^3 + x + 1, reflected.
)

type GenPacket struct {
	PDUType uint8
	Address [DeviceIDBytes]byte // Display order, as MAC() prints it.
	AD      []byte
}

// NamedAdvert builds AD data with flags and a complete local name.
func NamedAdvert(name string) []byte {
	var ad = []byte{2, adTypeFlags, 0x06}
	ad = append(ad, byte(len(name)+1), adTypeCompleteName)
	ad = append(ad, name...)

	return ad
}

// PDU is header, address and data, as bytes before the CRC.
func (g *GenPacket) PDU() []byte {
	Assert(len(g.AD) <= MaxDataLen-DeviceIDBytes)

	var pdu = []byte{g.PDUType & 0x0F, byte(DeviceIDBytes + len(g.AD))}
	for i := DeviceIDBytes - 1; i >= 0; i-- {
		pdu = append(pdu, g.Address[i])
	}

	return append(pdu, g.AD...)
}

// crc24 computes the BLE CRC over data, in transmission order.
// The three result bytes are sent first to last.
func crc24(data []byte) [CRCBytes]byte {
	// The register runs reflected, so the init value is bit reversed too.
	var state uint32
	for i := range 24 {
		if crc24Init&(1<<i) != 0 {
			state |= 1 << (23 - i)
		}
	}

	for _, b := range data {
		for range 8 {
			var next = (state ^ uint32(b)) & 1
			b >>= 1
			state >>= 1
			if next != 0 {
				state |= 1 << 23
				state ^= crc24Mask
			}
		}
	}

	return [CRCBytes]byte{byte(state), byte(state >> 8), byte(state >> 16)}
}

func appendByteBits(bits []uint8, b byte) []uint8 {
	for j := range 8 {
		bits = append(bits, (b>>j)&1)
	}

	return bits
}

/*------------------------------------------------------------------
 *
 * Name:	Bits
 *
 * Purpose:	On air bit sequence for one packet, with a little
 *		lead in before and padding after so a receiver has
 *		symbols on both sides.
 *
 *------------------------------------------------------------------*/

func (g *GenPacket) Bits(syncWord uint32) []uint8 {
	var bits = make([]uint8, 0, leadInBits+preambleBits+SyncWordBits+8*(PacketBufferSize)+trailBits)

	for range leadInBits {
		bits = append(bits, 0)
	}

	// Preamble alternates and ends on the opposite of the first address bit.
	var last = uint8(syncWord&1) ^ 1
	for i := range preambleBits {
		bits = append(bits, last^uint8((preambleBits-1-i)&1))
	}

	for p := range SyncWordBits {
		bits = append(bits, uint8(syncWord>>p)&1)
	}

	var pdu = g.PDU()
	for _, b := range pdu {
		bits = appendByteBits(bits, b)
	}

	var crc = crc24(pdu)
	for _, b := range crc {
		bits = appendByteBits(bits, b)
	}

	for range trailBits {
		bits = append(bits, 0)
	}

	return bits
}

// CRC the packet would carry.
func (g *GenPacket) CRC() [CRCBytes]byte {
	return crc24(g.PDU())
}

var quarterTurns = [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

// ModulateSymbols makes one sample per symbol, already decimated.
// len(bits)+1 samples: bit k is the rotation from sample k to k+1.
func ModulateSymbols(bits []uint8, amplitude int16) []Complex16 {
	var out = make([]Complex16, 0, len(bits)+1)
	var q = 0

	out = append(out, Complex16{I: amplitude, Q: 0})
	for _, b := range bits {
		q = (q + IfThenElse(b != 0, 1, 3)) % 4
		out = append(out, Complex16{
			I: int16(quarterTurns[q][0]) * amplitude,
			Q: int16(quarterTurns[q][1]) * amplitude,
		})
	}

	return out
}

// ModulateRaw makes sps raw samples per symbol with the phase turning
// smoothly through a quarter turn over each symbol.  Sample k*sps is
// the start of bit k, so packets can be concatenated without
// disturbing the symbol timing.
func ModulateRaw(bits []uint8, sps int, amplitude int8) []Complex8 {
	Assert(sps >= 1)

	var out = make([]Complex8, 0, len(bits)*sps)
	var phase float64
	var step = math.Pi / 2 / float64(sps)

	var sample = func() Complex8 {
		return Complex8{
			I: int8(math.Round(float64(amplitude) * math.Cos(phase))),
			Q: int8(math.Round(float64(amplitude) * math.Sin(phase))),
		}
	}

	for _, b := range bits {
		var dir = IfThenElse(b != 0, 1.0, -1.0)
		for range sps {
			out = append(out, sample())
			phase += dir * step
		}
		phase = math.Mod(phase, 2*math.Pi)
	}

	return out
}

// Silence is n raw samples of nothing, for gaps between packets.
func Silence(n int) []Complex8 {
	return make([]Complex8, n)
}

/*------------------------------------------------------------------
 *
 * Name:	GenPacketsMain
 *
 * Purpose:	Command line tool writing generated packets to a capture
 *		file.
 *
 *------------------------------------------------------------------*/

func GenPacketsMain(args []string) int {
	var flags = pflag.NewFlagSet(args[0], pflag.ContinueOnError)

	var outputFile = flags.StringP("output-file", "o", "", "Write samples to this file.  - for stdout.")
	var packetCount = flags.IntP("packet-count", "N", 1, "Generate specified number of packets.")
	var name = flags.StringP("name", "n", "fskrx", "Device name.  A sequence number is appended.")
	var amplitude = flags.IntP("amplitude", "a", DefaultAmplitude, "Signal amplitude, 1 - 127.")
	var gap = flags.IntP("gap", "g", 400, "Silent raw samples between packets.")
	var pduType = flags.Uint8P("pdu-type", "t", 0, "PDU type, 0 - 15.")
	var syncStr = flags.StringP("sync-word", "s", fmtHex32(SyncWordBLE), "Access address.")
	var showVersion = flags.BoolP("version", "v", false, "Print version and exit.")
	var help = flags.BoolP("help", "h", false, "Display help text.")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Generate raw 8 bit IQ samples for advertising packets.\n", args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", args[0])
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Example:  %s -N 10 -o x.c8\n", args[0])
		fmt.Fprintf(os.Stderr, "          fskrx x.c8\n")
	}

	if err := flags.Parse(args[1:]); err != nil {
		return 1
	}

	if *showVersion {
		printVersion(os.Stdout, args[0], false)
		return 0
	}

	if *help {
		flags.Usage()
		return 1
	}

	if *outputFile == "" {
		fmt.Fprintf(os.Stderr, "Output file (-o) is required.\n")
		return 1
	}

	if *amplitude < 1 || *amplitude > math.MaxInt8 {
		fmt.Fprintf(os.Stderr, "Amplitude must be in range of 1 to 127, not %d.\n", *amplitude)
		return 1
	}

	var syncWord, syncErr = strconv.ParseUint(*syncStr, 0, 32)
	if syncErr != nil {
		fmt.Fprintf(os.Stderr, "Bad sync word %q: %s\n", *syncStr, syncErr)
		return 1
	}

	var out io.Writer = os.Stdout
	if *outputFile != "-" {
		var f, err = os.Create(*outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Can't create %s: %s\n", *outputFile, err)
			return 1
		}
		defer f.Close()

		out = f
	}

	var w = bufio.NewWriter(out)

	if err := GenPackets(w, *packetCount, *name, uint8(*pduType), uint32(syncWord), int8(*amplitude), *gap); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}

	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}

	if *outputFile != "-" {
		fmt.Printf("Wrote %d packets to %s.\n", *packetCount, *outputFile)
	}

	return 0
}

// GenAddress is the device address used for generated packet i.
func GenAddress(i int) [DeviceIDBytes]byte {
	return [DeviceIDBytes]byte{0xC0, 0xFF, 0xEE, byte(i >> 16), byte(i >> 8), byte(i)}
}

// GenPackets writes count packets, each followed by gap samples of silence.
func GenPackets(w io.Writer, count int, name string, pduType uint8, syncWord uint32, amplitude int8, gap int) error {
	if err := WriteCapture(w, Silence(gap)); err != nil {
		return err
	}

	for i := range count {
		var g = GenPacket{
			PDUType: pduType,
			Address: GenAddress(i),
			AD:      NamedAdvert(fmt.Sprintf("%s-%d", name, i)),
		}

		if err := WriteCapture(w, ModulateRaw(g.Bits(syncWord), DecimateFactor, amplitude)); err != nil {
			return err
		}

		if err := WriteCapture(w, Silence(gap)); err != nil {
			return err
		}
	}

	return nil
}
