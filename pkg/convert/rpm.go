package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/openmarine/nmeabridge/pkg/nmea0183"
	"github.com/openmarine/nmeabridge/pkg/pgn"
)

// PGN 127488 Engine Parameters Rapid Update: engine instance u8, engine
// speed u16 (0.25 rpm), boost pressure u16 (100 Pa), tilt/trim i8.

// EngineToRPM converts PGN 127488 into an RPM sentence with source E
// (engine). The engine number is the N2K engine instance; 0 means a single
// or centerline engine in both protocols. Propeller pitch is not carried by
// this PGN and renders empty.
func EngineToRPM(talker string, d pgn.PGNData) ([]string, error) {
	if len(d.Data) < 3 {
		return nil, errors.Errorf("pgn 127488: payload is %d bytes, need at least 3", len(d.Data))
	}
	s := pgn.NewDataStream(d.Data)
	payloadInst, instOK := s.ReadUint8()
	instance, instOK := instanceOf(d, payloadInst, instOK)

	engine := ""
	if instOK {
		engine = strconv.Itoa(int(instance))
	}
	var rpm string
	if raw, ok := s.ReadUint16(); ok {
		rpm = num(float64(raw)*0.25, 1)
	}

	body := fmt.Sprintf("%sRPM,E,%s,%s,,A", talker, engine, rpm)
	return []string{nmea0183.Frame(body)}, nil
}

// RPMToEngine rebuilds PGN 127488 from an RPM sentence. Shaft-sourced
// readings (source S) have no engine-speed PGN equivalent and return nil.
func RPMToEngine(sentence string) *pgn.PGNData {
	if !nmea0183.Verify(sentence) {
		return nil
	}
	body, _, err := nmea0183.Parse(sentence)
	if err != nil {
		return nil
	}
	f := nmea0183.Fields(body)
	if len(f) < 4 || len(f[0]) != 5 || !strings.HasSuffix(f[0], "RPM") {
		return nil
	}
	if f[1] != "E" {
		return nil
	}

	var instance *uint8
	if f[2] != "" {
		n, err := strconv.Atoi(f[2])
		if err != nil || n < 0 || n > 0xFE {
			return nil
		}
		v := uint8(n)
		instance = &v
	}
	if f[3] == "" {
		return nil
	}
	rpm, err := strconv.ParseFloat(f[3], 64)
	if err != nil || rpm < 0 {
		return nil
	}

	speed := uint16(math.Round(rpm / 0.25))
	s := pgn.NewDataStream(nil)
	s.WriteUint8(instance)
	s.WriteUint16(&speed)
	s.WriteUint16(nil) // boost pressure
	s.WriteInt8(nil)   // tilt/trim
	s.WriteUint16(nil) // reserved
	out := outbound(127488, 2, s.Bytes())
	out.Instance = instance
	return out
}
