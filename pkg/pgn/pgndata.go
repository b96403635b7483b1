// Package pgn defines the decoded NMEA 2000 message record handed to and
// produced by the bridge engine, plus a DataStream for reading and writing
// PGN payload fields in the N2K wire encoding (little endian, with the
// all-ones patterns reserved for missing values).
package pgn

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// MaxPGN is the largest valid Parameter Group Number (21 bits).
	MaxPGN = 0x1FFFFF

	// MaxPriority is the lowest CAN arbitration priority (3 bits, 0 highest).
	MaxPriority = 7

	// AddressGlobal is the broadcast destination address.
	AddressGlobal = 0xFF

	// DefaultPriority is used when a transport does not carry priority,
	// e.g. when a PGN is recovered from a $PCDIN sentence.
	DefaultPriority = 6

	// FastPacketMaxSize is the assembled payload limit for a fast-packet
	// PGN: 6 bytes in the first frame plus 31 frames of 7 bytes.
	FastPacketMaxSize = 223
)

// PGNData is one decoded NMEA 2000 message. Payloads are presented fully
// assembled; fast-packet reassembly happens upstream (see adapter/canadapter).
type PGNData struct {
	// PGN is the Parameter Group Number, 21 bits.
	PGN uint32

	// Source and Destination are bus addresses. Destination is
	// AddressGlobal for broadcast PGNs.
	Source      uint8
	Destination uint8

	// Priority is the 3-bit CAN arbitration priority, 0 highest.
	Priority uint8

	// Data is the PGN-specific payload.
	Data []byte

	// Timestamp is when the message was captured or decoded.
	Timestamp time.Time

	// Instance disambiguates multiple same-PGN sources (engine #1 vs #2).
	// nil when the payload's own instance field is authoritative.
	Instance *uint8
}

// Validate checks the header fields against their wire bit widths. Payload
// length is a per-PGN concern and is checked by the individual converters.
func (d PGNData) Validate() error {
	if d.PGN > MaxPGN {
		return errors.Errorf("pgn %d exceeds 21-bit range", d.PGN)
	}
	if d.Priority > MaxPriority {
		return errors.Errorf("priority %d exceeds 3-bit range", d.Priority)
	}
	return nil
}

// fastPGNs lists the fast-packet PGNs this bridge converts or encapsulates.
// Everything else handled here is a single-frame PGN.
var fastPGNs = map[uint32]bool{
	129029: true, // GNSS position data
	129540: true, // GNSS satellites in view
	126996: true, // product information
}

// IsFast reports whether the PGN uses the fast-packet transport.
func IsFast(pgn uint32) bool {
	return fastPGNs[pgn]
}
