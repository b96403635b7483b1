package convert

import (
	"fmt"
	"math"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/pkg/errors"

	"github.com/openmarine/nmeabridge/pkg/nmea0183"
	"github.com/openmarine/nmeabridge/pkg/pgn"
)

// PGN 128267 Water Depth: SID u8, depth u32 (0.01 m), transducer offset
// i16 (0.001 m), max range u8 (10 m).

// DepthToDBT converts PGN 128267 into a DBT (depth below transducer)
// sentence. The transducer offset field is not applied: DBT reports depth
// below the transducer, not below keel or surface.
func DepthToDBT(talker string, d pgn.PGNData) ([]string, error) {
	if len(d.Data) < 5 {
		return nil, errors.Errorf("pgn 128267: payload is %d bytes, need at least 5", len(d.Data))
	}
	s := pgn.NewDataStream(d.Data)
	s.Skip(1) // SID

	var feet, meters, fathoms string
	if raw, ok := s.ReadUint32(); ok {
		m := float64(raw) * 0.01
		feet = num(m*metersToFeet, 1)
		meters = num(m, 1)
		fathoms = num(m*metersToFathoms, 1)
	}

	body := fmt.Sprintf("%sDBT,%s,f,%s,M,%s,F", talker, feet, meters, fathoms)
	return []string{nmea0183.Frame(body)}, nil
}

// DBTToDepth rebuilds PGN 128267 from a DBT sentence. The meters field is
// preferred; feet and fathoms are fallbacks. Depth is quantized to the
// PGN's 0.01 m resolution.
func DBTToDepth(sentence string) *pgn.PGNData {
	parsed, err := nmea.Parse(sentence)
	if err != nil {
		return nil
	}
	dbt, ok := parsed.(nmea.DBT)
	if !ok {
		return nil
	}

	meters := dbt.DepthMeters
	if meters == 0 {
		switch {
		case dbt.DepthFeet != 0:
			meters = dbt.DepthFeet / metersToFeet
		case dbt.DepthFathoms != 0:
			meters = dbt.DepthFathoms / metersToFathoms
		default:
			return nil
		}
	}

	depth := uint32(math.Round(meters / 0.01))
	s := pgn.NewDataStream(nil)
	s.WriteUint8(nil) // SID
	s.WriteUint32(&depth)
	s.WriteInt16(nil) // offset
	s.WriteUint8(nil) // range
	return outbound(128267, 3, s.Bytes())
}
