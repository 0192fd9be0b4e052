package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:   	Make decoded packets available to other applications.
 *
 * Description:	Besides stdout and the log file, each packet can be
 *		copied to any number of sinks:
 *
 *			TCP		text lines to every connected client.
 *			Pseudo terminal	same text, for programs that want a tty.
 *			Serial port	same text, to another box.
 *			Websocket	one JSON object per packet.
 *
 *		Sinks are called from the consumer goroutine, never from
 *		the processor, so a slow client can only delay the list
 *		display, not the decoding.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"strings"
	"time"
)

type Sink interface {
	Publish(pkt *DecodedPacket, now time.Time) error
	Close() error
}

// PacketJSON is the form sent to websocket clients.
type PacketJSON struct {
	Time     string `json:"ts"`
	MAC      string `json:"mac"`
	Name     string `json:"name,omitempty"`
	Type     uint8  `json:"type"`
	Size     uint8  `json:"size"`
	DataHex  string `json:"data_hex"`
	CRCHex   string `json:"crc_hex"`
	DB       int    `json:"db"`
	Channel  int    `json:"channel"`
	SyncOnly bool   `json:"sync_only,omitempty"`
}

func NewPacketJSON(pkt *DecodedPacket, now time.Time) PacketJSON {
	return PacketJSON{
		Time:     now.UTC().Format(time.RFC3339Nano),
		MAC:      pkt.MAC(),
		Name:     ParseLocalName(pkt.Payload()),
		Type:     pkt.Type,
		Size:     pkt.Size,
		DataHex:  pkt.DataHex(),
		CRCHex:   strings.ToUpper(hexBytes(pkt.CRC[:])),
		DB:       pkt.DB,
		Channel:  pkt.Channel,
		SyncOnly: pkt.SyncOnly,
	}
}

// Sinks publishes to all of them, carrying on past failures.
type Sinks []Sink

func (s Sinks) Publish(pkt *DecodedPacket, now time.Time) error {
	var errs []error
	for _, sink := range s {
		if err := sink.Publish(pkt, now); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s Sinks) Close() error {
	var errs []error
	for _, sink := range s {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
