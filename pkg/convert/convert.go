// Package convert holds the native NMEA 2000 -> NMEA 0183 sentence
// converters and their inverses. Each forward converter owns the field-level
// semantics of one sentence type: it decodes the PGN payload with the wire
// layout documented for that PGN and renders the sentence grammar, framing
// the result via pkg/nmea0183. Forward converters are total over well-sized
// payloads; a field flagged missing in the payload renders as an empty CSV
// field. Reverse converters rebuild a PGN record from one sentence and
// return nil when the sentence is not theirs or carries too little to work
// with.
package convert

import (
	"math"
	"strconv"
	"time"

	"github.com/openmarine/nmeabridge/pkg/pgn"
)

// Forward translates one decoded PGN record into zero or more framed
// sentences. Errors signal converter faults (e.g. truncated payloads) and
// are wrapped by the engine facade, never surfaced raw.
type Forward func(talker string, d pgn.PGNData) ([]string, error)

// Reverse rebuilds a PGN record from one framed sentence, or returns nil.
type Reverse func(sentence string) *pgn.PGNData

// DefaultTalker is the talker ID used when none is configured:
// "II" for integrated instrumentation.
const DefaultTalker = "II"

// Unit conversions between N2K SI payload fields and 0183 sentence units.
const (
	metersToFeet    = 3.28084
	metersToFathoms = 0.546807
	msToKnots       = 1.943844
	msToKmh         = 3.6
	radToDeg        = 180.0 / math.Pi
)

// num renders a float with fixed decimals for a sentence field.
func num(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// outbound fills in the header of a PGN record built by a reverse converter.
// The record originates on the 0183 side, so it is stamped as coming from
// the bridge itself and broadcast.
func outbound(pgnNum uint32, priority uint8, payload []byte) *pgn.PGNData {
	return &pgn.PGNData{
		PGN:         pgnNum,
		Source:      0,
		Destination: pgn.AddressGlobal,
		Priority:    priority,
		Data:        payload,
		Timestamp:   time.Now(),
	}
}

// instanceOf picks the effective instance for a converter: an explicit
// instance on the record overrides the payload's own instance field.
func instanceOf(d pgn.PGNData, payloadInstance uint8, payloadOK bool) (uint8, bool) {
	if d.Instance != nil {
		return *d.Instance, true
	}
	return payloadInstance, payloadOK
}
