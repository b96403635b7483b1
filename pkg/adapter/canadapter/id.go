package canadapter

import (
	"time"

	"github.com/openmarine/nmeabridge/pkg/pgn"
)

// FrameHeader is the information packed into a 29-bit extended CAN ID, plus
// the timestamp the frame was seen.
type FrameHeader struct {
	Timestamp   time.Time
	Source      uint8
	PGN         uint32
	Priority    uint8
	Destination uint8
}

// CANIDFromHeader packs a frame header into an extended CAN ID. For
// addressed PGNs (PDU format below 240) the destination rides in the low
// byte of the PGN field; broadcast PGNs carry their group extension there.
func CANIDFromHeader(h FrameHeader) uint32 {
	p := h.PGN
	if uint8(p>>8) < 240 {
		p = (p & 0x3FF00) | uint32(h.Destination)
	}
	return uint32(h.Priority&0x07)<<26 | p<<8 | uint32(h.Source)
}

// DecodeCANID unpacks an extended CAN ID. Addressed PGNs come back with the
// destination split out and the PGN's low byte cleared; broadcast PGNs get
// the global destination.
func DecodeCANID(id uint32) FrameHeader {
	h := FrameHeader{
		Timestamp:   time.Now(),
		Source:      uint8(id),
		PGN:         (id >> 8) & 0x3FFFF,
		Priority:    uint8(id>>26) & 0x07,
		Destination: pgn.AddressGlobal,
	}
	if uint8(h.PGN>>8) < 240 {
		h.Destination = uint8(h.PGN)
		h.PGN &= 0x3FF00
	}
	return h
}
