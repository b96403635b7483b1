// Package pcdin implements the $PCDIN encapsulation sentence used by bridge
// hardware to tunnel raw NMEA 2000 payloads over NMEA 0183 when no native
// sentence mapping exists. The wire form is
//
//	$PCDIN,<PGN 6 hex>,<source 2 hex>,<destination 2 hex>,<payload hex>*HH
//
// Priority and instance are not carried, so a PCDIN round trip is lossy for
// those two fields: decode defaults priority to 6 and leaves the instance
// unset, which matches what the emulated hardware does.
package pcdin

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/openmarine/nmeabridge/pkg/nmea0183"
	"github.com/openmarine/nmeabridge/pkg/pgn"
)

// MaxPGN is the largest PGN renderable in the sentence's six hex digits.
const MaxPGN = 0xFFFFFF

// sentencePattern is the strict shape a PCDIN sentence must have before any
// field is interpreted. Hex digits are uppercase on the wire.
var sentencePattern = regexp.MustCompile(`^\$PCDIN,[0-9A-F]{6},[0-9A-F]{2},[0-9A-F]{2},[0-9A-F]*\*[0-9A-F]{2}$`)

// Data is the subset of a PGN record that PCDIN carries.
type Data struct {
	PGN         uint32
	Source      uint8
	Destination uint8
	Payload     []byte
}

// FromPGNData projects a full PGN record onto the PCDIN fields.
func FromPGNData(d pgn.PGNData) Data {
	return Data{
		PGN:         d.PGN,
		Source:      d.Source,
		Destination: d.Destination,
		Payload:     d.Data,
	}
}

// Encode renders d as a framed $PCDIN sentence. A PGN wider than 24 bits is
// a caller contract violation and returns an error.
func Encode(d Data) (string, error) {
	if d.PGN > MaxPGN {
		return "", errors.Errorf("pgn %d does not fit the 6-digit PCDIN field", d.PGN)
	}
	body := fmt.Sprintf("PCDIN,%06X,%02X,%02X,%s",
		d.PGN, d.Source, d.Destination,
		strings.ToUpper(hex.EncodeToString(d.Payload)))
	return nmea0183.Frame(body), nil
}

// Decode parses a $PCDIN sentence back into a PGN record. It returns nil on
// any pattern or checksum mismatch rather than an error: callers use it
// speculatively to test whether a line is a PCDIN sentence at all. The
// returned record gets DefaultPriority and a decode-time timestamp.
func Decode(sentence string) *pgn.PGNData {
	if !sentencePattern.MatchString(sentence) {
		return nil
	}
	if !nmea0183.Verify(sentence) {
		return nil
	}
	body, _, err := nmea0183.Parse(sentence)
	if err != nil {
		return nil
	}
	fields := nmea0183.Fields(body)
	if len(fields) != 5 {
		return nil
	}
	if len(fields[4])%2 != 0 {
		return nil // payload hex must describe whole bytes
	}

	pgnNum, err := strconv.ParseUint(fields[1], 16, 32)
	if err != nil {
		return nil
	}
	src, err := strconv.ParseUint(fields[2], 16, 8)
	if err != nil {
		return nil
	}
	dst, err := strconv.ParseUint(fields[3], 16, 8)
	if err != nil {
		return nil
	}
	payload, err := hex.DecodeString(fields[4])
	if err != nil {
		return nil
	}

	return &pgn.PGNData{
		PGN:         uint32(pgnNum),
		Source:      uint8(src),
		Destination: uint8(dst),
		Priority:    pgn.DefaultPriority,
		Data:        payload,
		Timestamp:   time.Now(),
	}
}
