package convert

import (
	"fmt"
	"math"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/pkg/errors"

	"github.com/openmarine/nmeabridge/pkg/nmea0183"
	"github.com/openmarine/nmeabridge/pkg/pgn"
)

// PGN 130306 Wind Data: SID u8, wind speed u16 (0.01 m/s), wind angle
// u16 (0.0001 rad), reference in the low 3 bits of the next byte
// (0 true north, 1 magnetic, 2 apparent, 3 true boat, 4 true water).

const windRefApparent = 2

// WindToMWV converts PGN 130306 into an MWV (wind speed and angle)
// sentence. An apparent reading maps to reference R, every other reference
// to T. Status is A only when both angle and speed are present.
func WindToMWV(talker string, d pgn.PGNData) ([]string, error) {
	if len(d.Data) < 6 {
		return nil, errors.Errorf("pgn 130306: payload is %d bytes, need at least 6", len(d.Data))
	}
	s := pgn.NewDataStream(d.Data)
	s.Skip(1) // SID
	speedRaw, speedOK := s.ReadUint16()
	angleRaw, angleOK := s.ReadUint16()
	refByte, _ := s.ReadRawByte()

	var angle, speed string
	if angleOK {
		angle = num(float64(angleRaw)*0.0001*radToDeg, 1)
	}
	if speedOK {
		speed = num(float64(speedRaw)*0.01*msToKnots, 1)
	}
	ref := "T"
	if refByte&0x07 == windRefApparent {
		ref = "R"
	}
	status := "A"
	if !angleOK || !speedOK {
		status = "V"
	}

	body := fmt.Sprintf("%sMWV,%s,%s,%s,N,%s", talker, angle, ref, speed, status)
	return []string{nmea0183.Frame(body)}, nil
}

// MWVToWind rebuilds PGN 130306 from an MWV sentence. Reference R becomes
// apparent wind, T becomes true referenced to north.
func MWVToWind(sentence string) *pgn.PGNData {
	parsed, err := nmea.Parse(sentence)
	if err != nil {
		return nil
	}
	mwv, ok := parsed.(nmea.MWV)
	if !ok || !mwv.StatusValid {
		return nil
	}

	ms := mwv.WindSpeed
	switch mwv.WindSpeedUnit {
	case "N":
		ms = mwv.WindSpeed / msToKnots
	case "K":
		ms = mwv.WindSpeed / msToKmh
	}

	speed := uint16(math.Round(ms / 0.01))
	angle := uint16(math.Round(mwv.WindAngle / radToDeg / 0.0001))
	ref := byte(0xF8) // reserved bits set, reference true north
	if mwv.Reference == "R" {
		ref |= windRefApparent
	}

	s := pgn.NewDataStream(nil)
	s.WriteUint8(nil) // SID
	s.WriteUint16(&speed)
	s.WriteUint16(&angle)
	s.WriteRawByte(ref)
	s.WriteUint16(nil) // reserved
	return outbound(130306, 2, s.Bytes())
}
