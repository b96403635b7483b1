package bridge

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarine/nmeabridge/pkg/pgn"
	"github.com/openmarine/nmeabridge/pkg/profile"
)

func newTestEngine(t *testing.T, name string) *Engine {
	t.Helper()
	p, err := profile.Load(name)
	require.NoError(t, err)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewEngine(p, "", log)
}

func depthPGN() pgn.PGNData {
	return pgn.PGNData{
		PGN:         128267,
		Source:      0x23,
		Destination: pgn.AddressGlobal,
		Priority:    3,
		Data:        []byte{0x00, 0x7C, 0x01, 0x00, 0x00, 0xFF, 0x7F, 0xFF},
		Timestamp:   time.Now(),
	}
}

func batteryPGN() pgn.PGNData {
	return pgn.PGNData{
		PGN:         127508,
		Source:      0x23,
		Destination: pgn.AddressGlobal,
		Priority:    6,
		Data:        []byte{0x01, 0x64, 0x05, 0xFF, 0x7F, 0xFF, 0xFF, 0xFF},
		Timestamp:   time.Now(),
	}
}

func TestConvertPGNNative(t *testing.T) {
	e := newTestEngine(t, profile.ActisenseNGW1)

	res := e.ConvertPGNToSentences(depthPGN())
	require.True(t, res.Successful)
	assert.Equal(t, MethodNative, res.Method)
	assert.Equal(t, []string{"$IIDBT,12.5,f,3.8,M,2.1,F*2F"}, res.Sentences)
	assert.Empty(t, res.Errors)
}

func TestConvertPGNFallbackRuleTunnels(t *testing.T) {
	// Battery status carries a fallback flag in the NGW-1 profile, so it
	// tunnels even though the usage level is only moderate.
	e := newTestEngine(t, profile.ActisenseNGW1)

	res := e.ConvertPGNToSentences(batteryPGN())
	require.True(t, res.Successful)
	assert.Equal(t, MethodPCDIN, res.Method)
	assert.Equal(t, []string{"$PCDIN,01F214,23,FF,016405FF7FFFFFFF*56"}, res.Sentences)
}

func TestConvertPGNUnmapped(t *testing.T) {
	envData := pgn.PGNData{
		PGN:         130310,
		Source:      0x10,
		Destination: pgn.AddressGlobal,
		Priority:    5,
		Data:        []byte{0xFF, 0x00, 0x8D, 0x07, 0xFF, 0xFF, 0xFF, 0xFF},
		Timestamp:   time.Now(),
	}

	for _, name := range []string{profile.QuarkA032, profile.ActisenseNGW1} {
		e := newTestEngine(t, name)
		res := e.ConvertPGNToSentences(envData)
		assert.False(t, res.Successful, name)
		assert.Equal(t, MethodFailed, res.Method, name)
		assert.Empty(t, res.Sentences, name)
		require.Len(t, res.Errors, 1, name)
		assert.Equal(t, "no conversion rule for PGN 130310", res.Errors[0], name)
	}

	// The extensive profile tunnels what it cannot translate.
	extensive := newTestEngine(t, profile.ActisenseW2K1)
	res := extensive.ConvertPGNToSentences(envData)
	require.True(t, res.Successful)
	assert.Equal(t, MethodPCDIN, res.Method)
	assert.Equal(t, []string{"$PCDIN,01FD06,10,FF,FF008D07FFFFFFFF*2F"}, res.Sentences)
}

func TestConvertPGNConverterError(t *testing.T) {
	e := newTestEngine(t, profile.ActisenseNGW1)

	short := depthPGN()
	short.Data = []byte{0x00, 0x7C}
	res := e.ConvertPGNToSentences(short)
	assert.False(t, res.Successful)
	assert.Equal(t, MethodFailed, res.Method)
	assert.Empty(t, res.Sentences)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "128267")
}

func TestConvertPGNInvalidFrame(t *testing.T) {
	e := newTestEngine(t, profile.ActisenseNGW1)

	bad := depthPGN()
	bad.Priority = 9
	res := e.ConvertPGNToSentences(bad)
	assert.False(t, res.Successful)
	assert.Empty(t, res.Sentences)
	assert.NotEmpty(t, res.Errors)
}

func TestResultShapeInvariant(t *testing.T) {
	// Every outcome is either successful with sentences or failed with
	// errors; never a mix.
	e := newTestEngine(t, profile.ActisenseNGW1)
	inputs := []pgn.PGNData{
		depthPGN(),
		batteryPGN(),
		{PGN: 130310, Destination: pgn.AddressGlobal, Priority: 5, Data: []byte{0xFF}, Timestamp: time.Now()},
		{PGN: 128267, Destination: pgn.AddressGlobal, Priority: 3, Data: nil, Timestamp: time.Now()},
	}
	for _, d := range inputs {
		res := e.ConvertPGNToSentences(d)
		if res.Successful {
			assert.NotEmpty(t, res.Sentences, "pgn %d", d.PGN)
			assert.Empty(t, res.Errors, "pgn %d", d.PGN)
		} else {
			assert.Empty(t, res.Sentences, "pgn %d", d.PGN)
			assert.NotEmpty(t, res.Errors, "pgn %d", d.PGN)
			assert.Equal(t, MethodFailed, res.Method, "pgn %d", d.PGN)
		}
	}
}

func TestConvertSentenceNativeReverse(t *testing.T) {
	e := newTestEngine(t, profile.ActisenseNGW1)

	d := e.ConvertSentenceToPGN("$IIDBT,12.5,f,3.8,M,2.1,F*2F")
	require.NotNil(t, d)
	assert.Equal(t, uint32(128267), d.PGN)
	assert.Equal(t, uint8(pgn.AddressGlobal), d.Destination)
	// Depth below transducer round-trips at centimetre resolution.
	assert.Equal(t, []byte{0xFF, 0x7C, 0x01, 0x00, 0x00, 0xFF, 0x7F, 0xFF}, d.Data)
}

func TestConvertSentencePCDIN(t *testing.T) {
	e := newTestEngine(t, profile.QuarkA032)

	d := e.ConvertSentenceToPGN("$PCDIN,01F214,23,FF,016405FF7FFFFFFF*56")
	require.NotNil(t, d)
	assert.Equal(t, uint32(127508), d.PGN)
	assert.Equal(t, uint8(0x23), d.Source)
	assert.Equal(t, []byte{0x01, 0x64, 0x05, 0xFF, 0x7F, 0xFF, 0xFF, 0xFF}, d.Data)
}

func TestConvertSentenceUnroutable(t *testing.T) {
	e := newTestEngine(t, profile.QuarkA032)

	// The A032 profile has no engine rule, so RPM has nowhere to go.
	assert.Nil(t, e.ConvertSentenceToPGN("$IIRPM,E,0,800.0,,A*71"))
	// XDR is forward-only in the YBWN-02 profile.
	ybw := newTestEngine(t, profile.YachtDevicesYBWN02)
	assert.Nil(t, ybw.ConvertSentenceToPGN("$IIXDR,U,13.80,V,BAT1*0F"))

	assert.Nil(t, e.ConvertSentenceToPGN(""))
	assert.Nil(t, e.ConvertSentenceToPGN("garbage"))
	assert.Nil(t, e.ConvertSentenceToPGN("$II"))
	assert.Nil(t, e.ConvertSentenceToPGN("$PCDIN,01F214,23,FF,016405FF7FFFFFFF*00"))
}

func TestSupportedListings(t *testing.T) {
	e := newTestEngine(t, profile.ActisenseNGW1)
	assert.Contains(t, e.SupportedPGNs(), uint32(128267))
	assert.Contains(t, e.SupportedSentenceTypes(), "DBT")
	assert.Same(t, e.Profile().Rules.ByPGN(128267), e.Profile().Rules.ByType("DBT"))
}

func TestEngineConcurrentUse(t *testing.T) {
	e := newTestEngine(t, profile.ActisenseW2K1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				res := e.ConvertPGNToSentences(depthPGN())
				assert.True(t, res.Successful)
				assert.NotNil(t, e.ConvertSentenceToPGN("$IIDBT,12.5,f,3.8,M,2.1,F*2F"))
			}
		}()
	}
	wg.Wait()
}
