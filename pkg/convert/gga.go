package convert

import (
	"fmt"
	"math"
	"strconv"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/pkg/errors"

	"github.com/openmarine/nmeabridge/pkg/nmea0183"
	"github.com/openmarine/nmeabridge/pkg/pgn"
)

// PGN 129029 GNSS Position Data (43-byte fast packet): SID u8, date u16
// (days since 1970-01-01), time u32 (0.0001 s since midnight UTC), latitude
// i64 (1e-16 deg), longitude i64 (1e-16 deg), altitude i64 (1e-6 m), GNSS
// type + method packed u8, integrity packed u8, satellite count u8, HDOP
// i16 (0.01), PDOP i16 (0.01), geoidal separation i32 (0.01 m), reference
// station count u8.

// GNSSToGGA converts PGN 129029 into a GGA fix sentence, and fans out a ZDA
// time sentence as well when the payload carries a date. One fast-packet
// fix feeding two sentences is the normal behaviour of the emulated
// hardware.
func GNSSToGGA(talker string, d pgn.PGNData) ([]string, error) {
	if len(d.Data) < 43 {
		return nil, errors.Errorf("pgn 129029: payload is %d bytes, need 43", len(d.Data))
	}
	s := pgn.NewDataStream(d.Data)
	s.Skip(1) // SID
	dateRaw, dateOK := s.ReadUint16()
	timeRaw, timeOK := s.ReadUint32()
	latRaw, latOK := s.ReadInt64()
	lonRaw, lonOK := s.ReadInt64()
	altRaw, altOK := s.ReadInt64()
	pack1, _ := s.ReadRawByte()
	s.Skip(1) // integrity
	sats, satsOK := s.ReadUint8()
	hdopRaw, hdopOK := s.ReadInt16()
	s.Skip(2) // PDOP
	geoidRaw, geoidOK := s.ReadInt32()

	var clock string
	if timeOK {
		clock = clockField(timeRaw)
	}
	var lat, latHemi, lon, lonHemi string
	if latOK {
		lat, latHemi = latitudeField(float64(latRaw) * 1e-16)
	}
	if lonOK {
		lon, lonHemi = longitudeField(float64(lonRaw) * 1e-16)
	}
	quality := int(pack1 >> 4) // GNSS method nibble matches GGA quality
	var satsField string
	if satsOK {
		satsField = fmt.Sprintf("%02d", sats)
	}
	var hdop string
	if hdopOK {
		hdop = num(float64(hdopRaw)*0.01, 1)
	}
	var alt string
	if altOK {
		alt = num(float64(altRaw)*1e-6, 1)
	}
	var geoid string
	if geoidOK {
		geoid = num(float64(geoidRaw)*0.01, 1)
	}

	gga := fmt.Sprintf("%sGGA,%s,%s,%s,%s,%s,%d,%s,%s,%s,M,%s,M,,",
		talker, clock, lat, latHemi, lon, lonHemi, quality, satsField, hdop, alt, geoid)
	out := []string{nmea0183.Frame(gga)}

	if dateOK && timeOK {
		date := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(dateRaw))
		zda := fmt.Sprintf("%sZDA,%s,%02d,%02d,%04d,00,00",
			talker, clock, date.Day(), int(date.Month()), date.Year())
		out = append(out, nmea0183.Frame(zda))
	}
	return out, nil
}

// clockField renders 0.0001 s since midnight as hhmmss.ss.
func clockField(raw uint32) string {
	seconds := float64(raw) * 0.0001
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	sec := seconds - float64(h*3600+m*60)
	return fmt.Sprintf("%02d%02d%05.2f", h, m, sec)
}

// latitudeField renders decimal degrees as ddmm.mmmm plus hemisphere.
func latitudeField(deg float64) (string, string) {
	hemi := "N"
	if deg < 0 {
		hemi = "S"
		deg = -deg
	}
	d := int(deg)
	return fmt.Sprintf("%02d%07.4f", d, (deg-float64(d))*60), hemi
}

// longitudeField renders decimal degrees as dddmm.mmmm plus hemisphere.
func longitudeField(deg float64) (string, string) {
	hemi := "E"
	if deg < 0 {
		hemi = "W"
		deg = -deg
	}
	d := int(deg)
	return fmt.Sprintf("%03d%07.4f", d, (deg-float64(d))*60), hemi
}

// GGAToGNSS rebuilds PGN 129029 from a GGA sentence. GGA carries no date,
// so the date field is written as missing rather than guessing one; PDOP
// and the reference station list are missing for the same reason.
func GGAToGNSS(sentence string) *pgn.PGNData {
	parsed, err := nmea.Parse(sentence)
	if err != nil {
		return nil
	}
	gga, ok := parsed.(nmea.GGA)
	if !ok {
		return nil
	}

	s := pgn.NewDataStream(nil)
	s.WriteUint8(nil)  // SID
	s.WriteUint16(nil) // date
	if gga.Time.Valid {
		t := uint32((gga.Time.Hour*3600+gga.Time.Minute*60+gga.Time.Second)*10000 + gga.Time.Millisecond*10)
		s.WriteUint32(&t)
	} else {
		s.WriteUint32(nil)
	}
	lat := int64(math.Round(gga.Latitude * 1e16))
	lon := int64(math.Round(gga.Longitude * 1e16))
	alt := int64(math.Round(gga.Altitude * 1e6))
	s.WriteInt64(&lat)
	s.WriteInt64(&lon)
	s.WriteInt64(&alt)

	method, _ := strconv.Atoi(gga.FixQuality)
	s.WriteRawByte(byte(method&0x0F) << 4) // GNSS type GPS, method from quality
	s.WriteRawByte(0xFC)                   // integrity unknown, reserved bits set
	if gga.NumSatellites > 0 {
		sats := uint8(gga.NumSatellites)
		s.WriteUint8(&sats)
	} else {
		s.WriteUint8(nil)
	}
	if gga.HDOP > 0 {
		hdop := int16(math.Round(gga.HDOP * 100))
		s.WriteInt16(&hdop)
	} else {
		s.WriteInt16(nil)
	}
	s.WriteInt16(nil) // PDOP
	geoid := int32(math.Round(gga.Separation * 100))
	s.WriteInt32(&geoid)
	s.WriteUint8(nil) // reference stations

	return outbound(129029, 3, s.Bytes())
}
