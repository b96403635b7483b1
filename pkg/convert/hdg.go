package convert

import (
	"fmt"
	"math"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/pkg/errors"

	"github.com/openmarine/nmeabridge/pkg/nmea0183"
	"github.com/openmarine/nmeabridge/pkg/pgn"
)

// PGN 127250 Vessel Heading: SID u8, heading u16 (0.0001 rad), deviation
// i16 (0.0001 rad), variation i16 (0.0001 rad), reference in the low 2 bits
// of the next byte (0 true, 1 magnetic).

// HeadingToHDG converts PGN 127250 into an HDG (heading, deviation and
// variation) sentence. Signed deviation and variation split into a
// magnitude plus an E/W direction letter.
func HeadingToHDG(talker string, d pgn.PGNData) ([]string, error) {
	if len(d.Data) < 7 {
		return nil, errors.Errorf("pgn 127250: payload is %d bytes, need at least 7", len(d.Data))
	}
	s := pgn.NewDataStream(d.Data)
	s.Skip(1) // SID

	var heading string
	if raw, ok := s.ReadUint16(); ok {
		heading = num(float64(raw)*0.0001*radToDeg, 1)
	}
	deviation, devDir := signedAngle(s.ReadInt16())
	variation, varDir := signedAngle(s.ReadInt16())

	body := fmt.Sprintf("%sHDG,%s,%s,%s,%s,%s", talker, heading, deviation, devDir, variation, varDir)
	return []string{nmea0183.Frame(body)}, nil
}

// signedAngle renders a 0.0001 rad signed field as magnitude degrees plus
// an easterly/westerly direction letter, or empty fields when missing.
func signedAngle(raw int16, ok bool) (value, direction string) {
	if !ok {
		return "", ""
	}
	deg := float64(raw) * 0.0001 * radToDeg
	if deg < 0 {
		return num(-deg, 1), "W"
	}
	return num(deg, 1), "E"
}

// HDGToHeading rebuilds PGN 127250 from an HDG sentence. The sentence's
// heading is magnetic by definition, so the reference bits say magnetic.
// Deviation and variation count as present only when their direction letter
// is, since an empty numeric field parses indistinguishably from zero.
func HDGToHeading(sentence string) *pgn.PGNData {
	parsed, err := nmea.Parse(sentence)
	if err != nil {
		return nil
	}
	hdg, ok := parsed.(nmea.HDG)
	if !ok {
		return nil
	}

	heading := uint16(math.Round(hdg.Heading / radToDeg / 0.0001))
	s := pgn.NewDataStream(nil)
	s.WriteUint8(nil) // SID
	s.WriteUint16(&heading)
	s.WriteInt16(angleField(hdg.Deviation, hdg.DeviationDirection))
	s.WriteInt16(angleField(hdg.Variation, hdg.VariationDirection))
	s.WriteRawByte(0xFD) // reference magnetic, reserved bits set
	return outbound(127250, 2, s.Bytes())
}

// angleField converts magnitude degrees plus direction into the PGN's
// signed 0.0001 rad encoding; nil when the direction letter is absent.
func angleField(deg float64, direction string) *int16 {
	if direction != "E" && direction != "W" {
		return nil
	}
	if direction == "W" {
		deg = -deg
	}
	v := int16(math.Round(deg / radToDeg / 0.0001))
	return &v
}
