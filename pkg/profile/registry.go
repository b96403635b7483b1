package profile

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/openmarine/nmeabridge/pkg/convert"
)

// Device identities in the catalogue.
const (
	ActisenseNGW1      = "actisense-ngw1"
	ActisenseW2K1      = "actisense-w2k1"
	YachtDevicesYBWN02 = "yacht-devices-ybwn02"
	QuarkA032          = "qk-a032"
)

// builders is the static device catalogue. Each entry constructs a fresh
// profile so loaded profiles never share mutable state.
var builders = map[string]func() (*Profile, error){
	ActisenseNGW1:      newNGW1,
	ActisenseW2K1:      newW2K1,
	YachtDevicesYBWN02: newYBWN02,
	QuarkA032:          newA032,
}

// Names lists the known device profiles in ascending order.
func Names() []string {
	names := maps.Keys(builders)
	slices.Sort(names)
	return names
}

// Load builds the profile for the named device. Unknown names are a
// configuration error, never a silent default.
func Load(name string) (*Profile, error) {
	build, ok := builders[name]
	if !ok {
		return nil, errors.Errorf("unknown bridge profile %q (have %v)", name, Names())
	}
	return build()
}

// Transmission cadences shared by the catalogue. Engine RPM repeats fast,
// navigation PGNs at 1 Hz, tank and battery state slowly.
const (
	periodFast = 500 * time.Millisecond
	periodNav  = time.Second
	periodSlow = 2 * time.Second
)

// navigationRules are the native conversions every catalogued device
// performs: depth, water speed, wind, GNSS fix and heading.
func navigationRules() []Rule {
	return []Rule{
		{PGN: 128267, SentenceType: "DBT", Forward: convert.DepthToDBT, Reverse: convert.DBTToDepth},
		{PGN: 128259, SentenceType: "VHW", Forward: convert.SpeedToVHW, Reverse: convert.VHWToSpeed},
		{PGN: 130306, SentenceType: "MWV", Forward: convert.WindToMWV, Reverse: convert.MWVToWind},
		{PGN: 129029, SentenceType: "GGA", Forward: convert.GNSSToGGA, Reverse: convert.GGAToGNSS},
		{PGN: 127250, SentenceType: "HDG", Forward: convert.HeadingToHDG, Reverse: convert.HDGToHeading},
	}
}

func navigationPeriods() map[uint32]time.Duration {
	return map[uint32]time.Duration{
		128267: periodNav,
		128259: periodNav,
		130306: periodNav,
		129029: periodNav,
		127250: periodNav,
	}
}

// newNGW1 is the reference profile: an Actisense NGW-1 converts the
// navigation set plus engine RPM natively and tunnels battery and tank
// state through $PCDIN, since it has no native mapping for either.
func newNGW1() (*Profile, error) {
	rules := append(navigationRules(),
		Rule{PGN: 127488, SentenceType: "RPM", Forward: convert.EngineToRPM, Reverse: convert.RPMToEngine},
		Rule{PGN: 127508, PCDINFallback: true},
		Rule{PGN: 127505, PCDINFallback: true},
	)
	rs, err := NewRuleSet(rules)
	if err != nil {
		return nil, err
	}
	periods := navigationPeriods()
	periods[127488] = periodFast
	periods[127508] = periodSlow
	periods[127505] = periodSlow
	return &Profile{
		Name:                ActisenseNGW1,
		Manufacturer:        "Actisense",
		Model:               "NGW-1",
		Rules:               rs,
		PCDINUsage:          UsageModerate,
		TransmissionPeriods: periods,
	}, nil
}

// newW2K1 mirrors the NGW-1 conversion table but tunnels aggressively:
// the W2K-1 gateway forwards PGNs it cannot translate as $PCDIN instead of
// dropping them.
func newW2K1() (*Profile, error) {
	p, err := newNGW1()
	if err != nil {
		return nil, err
	}
	p.Name = ActisenseW2K1
	p.Model = "W2K-1"
	p.PCDINUsage = UsageExtensive
	return p, nil
}

// newYBWN02 models a Yacht Devices YBWN-02, which does emit XDR for
// battery state. Tank level stays a $PCDIN fallback: XDR is already bound
// to the battery conversion and a sentence type routes to exactly one rule.
func newYBWN02() (*Profile, error) {
	rules := append(navigationRules(),
		Rule{PGN: 127488, SentenceType: "RPM", Forward: convert.EngineToRPM, Reverse: convert.RPMToEngine},
		Rule{PGN: 127508, SentenceType: "XDR", Forward: convert.BatteryToXDR},
		Rule{PGN: 127505, PCDINFallback: true},
	)
	rs, err := NewRuleSet(rules)
	if err != nil {
		return nil, err
	}
	periods := navigationPeriods()
	periods[127488] = periodFast
	periods[127508] = periodSlow
	periods[127505] = periodSlow
	return &Profile{
		Name:                YachtDevicesYBWN02,
		Manufacturer:        "Yacht Devices",
		Model:               "YBWN-02",
		Rules:               rs,
		PCDINUsage:          UsageModerate,
		TransmissionPeriods: periods,
	}, nil
}

// newA032 models a Quark-elec A032, a navigation-only gateway: no engine
// or electrical conversions and no tunnelling of unmapped PGNs.
func newA032() (*Profile, error) {
	rs, err := NewRuleSet(navigationRules())
	if err != nil {
		return nil, err
	}
	return &Profile{
		Name:                QuarkA032,
		Manufacturer:        "Quark-elec",
		Model:               "QK-A032",
		Rules:               rs,
		PCDINUsage:          UsageMinimal,
		TransmissionPeriods: navigationPeriods(),
	}, nil
}
