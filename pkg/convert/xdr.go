package convert

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/openmarine/nmeabridge/pkg/nmea0183"
	"github.com/openmarine/nmeabridge/pkg/pgn"
)

// XDR transducer sentences for the two PGNs most real bridges refuse to map
// natively. The default profile routes both through PCDIN; profiles for
// hardware that does emit XDR (Yacht Devices) bind these instead.

// PGN 127508 Battery Status: battery instance u8, voltage u16 (0.01 V),
// current i16 (0.1 A), temperature u16 (0.01 K), SID u8.

// BatteryToXDR converts PGN 127508 into an XDR sentence. The voltage
// quadruple is always present (empty-valued when the field is missing);
// current and temperature quadruples are appended only when carried.
func BatteryToXDR(talker string, d pgn.PGNData) ([]string, error) {
	if len(d.Data) < 3 {
		return nil, errors.Errorf("pgn 127508: payload is %d bytes, need at least 3", len(d.Data))
	}
	s := pgn.NewDataStream(d.Data)
	payloadInst, instOK := s.ReadUint8()
	instance, _ := instanceOf(d, payloadInst, instOK)

	var quads []string
	if raw, ok := s.ReadUint16(); ok {
		quads = append(quads, fmt.Sprintf("U,%s,V,BAT%d", num(float64(raw)*0.01, 2), instance))
	} else {
		quads = append(quads, fmt.Sprintf("U,,V,BAT%d", instance))
	}
	if raw, ok := s.ReadInt16(); ok {
		quads = append(quads, fmt.Sprintf("I,%s,A,BAT%d", num(float64(raw)*0.1, 1), instance))
	}
	if raw, ok := s.ReadUint16(); ok {
		quads = append(quads, fmt.Sprintf("C,%s,C,BAT%d", num(float64(raw)*0.01-273.15, 1), instance))
	}

	body := fmt.Sprintf("%sXDR,%s", talker, strings.Join(quads, ","))
	return []string{nmea0183.Frame(body)}, nil
}

// PGN 127505 Fluid Level: instance in the low nibble and fluid type in the
// high nibble of the first byte, level i16 (0.004 %), capacity u32 (0.1 L).

// fluidNames gives XDR transducer ID prefixes per N2K fluid type.
var fluidNames = map[uint8]string{
	0: "FUEL",
	1: "FRESHWATER",
	2: "GRAYWATER",
	3: "LIVEWELL",
	4: "OIL",
	5: "BLACKWATER",
}

// TankLevelToXDR converts PGN 127505 into a volume-percentage XDR sentence.
func TankLevelToXDR(talker string, d pgn.PGNData) ([]string, error) {
	if len(d.Data) < 3 {
		return nil, errors.Errorf("pgn 127505: payload is %d bytes, need at least 3", len(d.Data))
	}
	s := pgn.NewDataStream(d.Data)
	first, _ := s.ReadRawByte()
	instance, _ := instanceOf(d, first&0x0F, true)
	fluid := first >> 4

	name, ok := fluidNames[fluid]
	if !ok {
		name = "TANK"
	}
	var level string
	if raw, ok := s.ReadInt16(); ok {
		level = num(float64(raw)*0.004, 1)
	}

	body := fmt.Sprintf("%sXDR,V,%s,P,%s%d", talker, level, name, instance)
	return []string{nmea0183.Frame(body)}, nil
}
