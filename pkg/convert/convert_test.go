package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarine/nmeabridge/pkg/nmea0183"
	"github.com/openmarine/nmeabridge/pkg/pgn"
)

func record(pgnNum uint32, data []byte) pgn.PGNData {
	return pgn.PGNData{
		PGN:         pgnNum,
		Source:      42,
		Destination: pgn.AddressGlobal,
		Priority:    2,
		Data:        data,
		Timestamp:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDepthToDBT(t *testing.T) {
	// 3.80 m depth, offset and range missing
	d := record(128267, []byte{0x00, 0x7C, 0x01, 0x00, 0x00, 0xFF, 0x7F, 0xFF})
	got, err := DepthToDBT("II", d)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "$IIDBT,12.5,f,3.8,M,2.1,F*2F", got[0])
	assert.True(t, nmea0183.Verify(got[0]))
}

func TestDepthToDBTMissingDepth(t *testing.T) {
	d := record(128267, []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F, 0xFF})
	got, err := DepthToDBT("II", d)
	require.NoError(t, err)
	assert.Equal(t, "$IIDBT,,f,,M,,F*3F", got[0])
}

func TestDepthToDBTShortPayload(t *testing.T) {
	_, err := DepthToDBT("II", record(128267, []byte{0x00, 0x7C}))
	assert.Error(t, err)
}

func TestDBTToDepthRoundTrip(t *testing.T) {
	out := DBTToDepth("$IIDBT,12.5,f,3.8,M,2.1,F*2F")
	require.NotNil(t, out)
	assert.Equal(t, uint32(128267), out.PGN)

	s := pgn.NewDataStream(out.Data)
	s.Skip(1)
	depth, ok := s.ReadUint32()
	require.True(t, ok)
	// reproduced to the PGN's 0.01 m resolution
	assert.InDelta(t, 3.8, float64(depth)*0.01, 0.01)
}

func TestDBTToDepthRejects(t *testing.T) {
	assert.Nil(t, DBTToDepth("$IIMWV,45.0,R,9.7,N,A*02"))
	assert.Nil(t, DBTToDepth("$IIDBT,,f,,M,,F*3F")) // no depth at all
	assert.Nil(t, DBTToDepth("not a sentence"))
}

func TestSpeedToVHW(t *testing.T) {
	// 3.00 m/s water speed, ground speed missing
	d := record(128259, []byte{0x00, 0x2C, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	got, err := SpeedToVHW("II", d)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "$IIVHW,,T,,M,5.8,N,10.8,K*61", got[0])
}

func TestVHWToSpeed(t *testing.T) {
	out := VHWToSpeed("$IIVHW,,T,,M,5.8,N,10.8,K*61")
	require.NotNil(t, out)
	assert.Equal(t, uint32(128259), out.PGN)

	s := pgn.NewDataStream(out.Data)
	s.Skip(1)
	water, ok := s.ReadUint16()
	require.True(t, ok)
	assert.InDelta(t, 5.8/msToKnots, float64(water)*0.01, 0.01)

	_, ok = s.ReadUint16()
	assert.False(t, ok, "ground speed must stay missing")
}

func TestWindToMWV(t *testing.T) {
	// 5.00 m/s apparent wind at 0.7854 rad
	d := record(130306, []byte{0x00, 0xF4, 0x01, 0xAE, 0x1E, 0xFA, 0xFF, 0xFF})
	got, err := WindToMWV("II", d)
	require.NoError(t, err)
	assert.Equal(t, "$IIMWV,45.0,R,9.7,N,A*02", got[0])
}

func TestWindToMWVMissingFields(t *testing.T) {
	// angle missing: status flips to V, field renders empty
	d := record(130306, []byte{0x00, 0xF4, 0x01, 0xFF, 0xFF, 0xFA, 0xFF, 0xFF})
	got, err := WindToMWV("II", d)
	require.NoError(t, err)
	assert.Equal(t, "$IIMWV,,R,9.7,N,V*15", got[0])
}

func TestMWVToWind(t *testing.T) {
	out := MWVToWind("$IIMWV,45.0,R,9.7,N,A*02")
	require.NotNil(t, out)
	assert.Equal(t, uint32(130306), out.PGN)

	s := pgn.NewDataStream(out.Data)
	s.Skip(1)
	speed, ok := s.ReadUint16()
	require.True(t, ok)
	assert.InDelta(t, 9.7/msToKnots, float64(speed)*0.01, 0.01)
	angle, ok := s.ReadUint16()
	require.True(t, ok)
	assert.InDelta(t, 45.0/radToDeg, float64(angle)*0.0001, 0.0001)
	ref, ok := s.ReadRawByte()
	require.True(t, ok)
	assert.Equal(t, uint8(windRefApparent), ref&0x07)
}

func TestHeadingToHDG(t *testing.T) {
	// heading 1.5708 rad, deviation -0.0349 rad, variation 0.0175 rad
	d := record(127250, []byte{0x00, 0x5C, 0x3D, 0xA3, 0xFE, 0xAF, 0x00, 0xFD})
	got, err := HeadingToHDG("II", d)
	require.NoError(t, err)
	assert.Equal(t, "$IIHDG,90.0,2.0,W,1.0,E*61", got[0])
}

func TestHDGToHeading(t *testing.T) {
	out := HDGToHeading("$IIHDG,90.0,2.0,W,1.0,E*61")
	require.NotNil(t, out)
	assert.Equal(t, uint32(127250), out.PGN)

	s := pgn.NewDataStream(out.Data)
	s.Skip(1)
	heading, ok := s.ReadUint16()
	require.True(t, ok)
	assert.InDelta(t, 90.0/radToDeg, float64(heading)*0.0001, 0.0002)
	deviation, ok := s.ReadInt16()
	require.True(t, ok)
	assert.InDelta(t, -2.0/radToDeg, float64(deviation)*0.0001, 0.0002)
	variation, ok := s.ReadInt16()
	require.True(t, ok)
	assert.InDelta(t, 1.0/radToDeg, float64(variation)*0.0001, 0.0002)
}

func TestHDGToHeadingNoDirections(t *testing.T) {
	out := HDGToHeading(nmea0183.Frame("IIHDG,90.0,,,,"))
	require.NotNil(t, out)
	s := pgn.NewDataStream(out.Data)
	s.Skip(3)
	_, ok := s.ReadInt16()
	assert.False(t, ok, "deviation without direction letter is missing")
	_, ok = s.ReadInt16()
	assert.False(t, ok, "variation without direction letter is missing")
}

func TestEngineToRPM(t *testing.T) {
	// engine 0 at 800 rpm (raw 3200 in 0.25 rpm units)
	d := record(127488, []byte{0x00, 0x80, 0x0C, 0xFF, 0xFF, 0x7F, 0xFF, 0xFF})
	got, err := EngineToRPM("II", d)
	require.NoError(t, err)
	assert.Equal(t, "$IIRPM,E,0,800.0,,A*71", got[0])
}

func TestEngineToRPMInstanceOverride(t *testing.T) {
	d := record(127488, []byte{0x00, 0x80, 0x0C, 0xFF, 0xFF, 0x7F, 0xFF, 0xFF})
	two := uint8(2)
	d.Instance = &two
	got, err := EngineToRPM("II", d)
	require.NoError(t, err)
	assert.Equal(t, nmea0183.Frame("IIRPM,E,2,800.0,,A"), got[0])
}

func TestRPMToEngine(t *testing.T) {
	out := RPMToEngine("$IIRPM,E,0,800.0,,A*71")
	require.NotNil(t, out)
	assert.Equal(t, uint32(127488), out.PGN)

	s := pgn.NewDataStream(out.Data)
	instance, ok := s.ReadUint8()
	require.True(t, ok)
	assert.Equal(t, uint8(0), instance)
	speed, ok := s.ReadUint16()
	require.True(t, ok)
	assert.Equal(t, uint16(3200), speed)
}

func TestRPMToEngineRejectsShaft(t *testing.T) {
	assert.Nil(t, RPMToEngine(nmea0183.Frame("IIRPM,S,0,800.0,,A")))
	assert.Nil(t, RPMToEngine(nmea0183.Frame("IIRPM,E,0,,,A")))
}

func TestBatteryToXDR(t *testing.T) {
	// battery 1 at 13.80 V, current and temperature missing
	d := record(127508, []byte{0x01, 0x64, 0x05, 0xFF, 0x7F, 0xFF, 0xFF, 0xFF})
	got, err := BatteryToXDR("II", d)
	require.NoError(t, err)
	assert.Equal(t, "$IIXDR,U,13.80,V,BAT1*0F", got[0])
}

func TestTankLevelToXDR(t *testing.T) {
	// fuel tank 0 at 75.0 % (raw 18750 in 0.004 % units)
	d := record(127505, []byte{0x00, 0x3E, 0x49, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	got, err := TankLevelToXDR("II", d)
	require.NoError(t, err)
	assert.Equal(t, "$IIXDR,V,75.0,P,FUEL0*7E", got[0])
}

func gnssPayload(t *testing.T) []byte {
	t.Helper()
	s := pgn.NewDataStream(nil)
	sid := uint8(0)
	s.WriteUint8(&sid)
	date := uint16(20000) // 2024-10-04
	s.WriteUint16(&date)
	clock := uint32(453190000) // 12:35:19.00
	s.WriteUint32(&clock)
	lat := int64(481173000000000000) // 48.1173 N
	s.WriteInt64(&lat)
	lon := int64(115167000000000000) // 11.5167 E
	s.WriteInt64(&lon)
	alt := int64(545400000) // 545.4 m
	s.WriteInt64(&alt)
	s.WriteRawByte(0x10) // GPS, method 1
	s.WriteRawByte(0xFC)
	sats := uint8(8)
	s.WriteUint8(&sats)
	hdop := int16(90)
	s.WriteInt16(&hdop)
	s.WriteInt16(nil) // PDOP
	geoid := int32(4690)
	s.WriteInt32(&geoid)
	s.WriteUint8(nil) // reference stations
	require.Len(t, s.Bytes(), 43)
	return s.Bytes()
}

func TestGNSSToGGAFanOut(t *testing.T) {
	got, err := GNSSToGGA("II", record(129029, gnssPayload(t)))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "$IIGGA,123519.00,4807.0380,N,01131.0020,E,1,08,0.9,545.4,M,46.9,M,,*7C", got[0])
	assert.Equal(t, "$IIZDA,123519.00,04,10,2024,00,00*7D", got[1])
	for _, s := range got {
		assert.True(t, nmea0183.Verify(s))
	}
}

func TestGNSSToGGAShortPayload(t *testing.T) {
	_, err := GNSSToGGA("II", record(129029, make([]byte, 8)))
	assert.Error(t, err)
}

func TestGGAToGNSS(t *testing.T) {
	out := GGAToGNSS("$IIGGA,123519.00,4807.0380,N,01131.0020,E,1,08,0.9,545.4,M,46.9,M,,*7C")
	require.NotNil(t, out)
	assert.Equal(t, uint32(129029), out.PGN)
	require.Len(t, out.Data, 43)

	s := pgn.NewDataStream(out.Data)
	s.Skip(1)
	_, dateOK := s.ReadUint16()
	assert.False(t, dateOK, "GGA has no date; field must be missing")
	clock, ok := s.ReadUint32()
	require.True(t, ok)
	assert.Equal(t, uint32(453190000), clock)
	lat, ok := s.ReadInt64()
	require.True(t, ok)
	assert.InDelta(t, 48.1173, float64(lat)*1e-16, 1e-6)
	lon, ok := s.ReadInt64()
	require.True(t, ok)
	assert.InDelta(t, 11.5167, float64(lon)*1e-16, 1e-6)
	alt, ok := s.ReadInt64()
	require.True(t, ok)
	assert.InDelta(t, 545.4, float64(alt)*1e-6, 1e-3)
}
