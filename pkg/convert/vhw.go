package convert

import (
	"fmt"
	"math"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/pkg/errors"

	"github.com/openmarine/nmeabridge/pkg/nmea0183"
	"github.com/openmarine/nmeabridge/pkg/pgn"
)

// PGN 128259 Speed Water Referenced: SID u8, speed water referenced
// u16 (0.01 m/s), speed ground referenced u16 (0.01 m/s), SWRT u8.

// SpeedToVHW converts PGN 128259 into a VHW (water speed and heading)
// sentence. The PGN carries no heading, so the degree fields stay empty.
func SpeedToVHW(talker string, d pgn.PGNData) ([]string, error) {
	if len(d.Data) < 3 {
		return nil, errors.Errorf("pgn 128259: payload is %d bytes, need at least 3", len(d.Data))
	}
	s := pgn.NewDataStream(d.Data)
	s.Skip(1) // SID

	var knots, kmh string
	if raw, ok := s.ReadUint16(); ok {
		ms := float64(raw) * 0.01
		knots = num(ms*msToKnots, 1)
		kmh = num(ms*msToKmh, 1)
	}

	body := fmt.Sprintf("%sVHW,,T,,M,%s,N,%s,K", talker, knots, kmh)
	return []string{nmea0183.Frame(body)}, nil
}

// VHWToSpeed rebuilds PGN 128259 from a VHW sentence. Only the water speed
// survives the trip; ground-referenced speed and the reference type are
// written as missing.
func VHWToSpeed(sentence string) *pgn.PGNData {
	parsed, err := nmea.Parse(sentence)
	if err != nil {
		return nil
	}
	vhw, ok := parsed.(nmea.VHW)
	if !ok {
		return nil
	}

	ms := vhw.SpeedThroughWaterKnots / msToKnots
	if ms == 0 && vhw.SpeedThroughWaterKPH != 0 {
		ms = vhw.SpeedThroughWaterKPH / msToKmh
	}
	if ms == 0 {
		return nil
	}

	water := uint16(math.Round(ms / 0.01))
	s := pgn.NewDataStream(nil)
	s.WriteUint8(nil) // SID
	s.WriteUint16(&water)
	s.WriteUint16(nil) // ground referenced
	s.WriteUint8(nil)  // SWRT
	s.WriteUint16(nil) // reserved
	return outbound(128259, 2, s.Bytes())
}
