// Package profile models the conversion policy of one emulated bridge
// device: which PGNs translate to native NMEA 0183 sentences, which fall
// back to $PCDIN encapsulation, and how often each PGN is expected on the
// wire. Profiles are built once by Load and treated as read-only; the rule
// tables are fixed strategy maps in the same spirit as a decoder lookup
// table, bound to converter functions at build time.
package profile

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/openmarine/nmeabridge/pkg/convert"
)

// PCDINUsage says how eagerly a device tunnels PGNs through $PCDIN.
type PCDINUsage string

const (
	// UsageMinimal tunnels only PGNs whose rule explicitly asks for it.
	UsageMinimal PCDINUsage = "minimal"
	// UsageModerate additionally honors fallback-flagged rules (the
	// common hardware default).
	UsageModerate PCDINUsage = "moderate"
	// UsageExtensive also tunnels PGNs with no rule at all.
	UsageExtensive PCDINUsage = "extensive"
)

// Rule binds one PGN to its conversion treatment.
type Rule struct {
	// PGN is the rule's Parameter Group Number key.
	PGN uint32

	// SentenceType tags the native conversion ("DBT", "XDR", ...);
	// empty when the rule has no native mapping.
	SentenceType string

	// Forward is the native converter; nil when SentenceType is empty.
	Forward convert.Forward

	// Reverse rebuilds the PGN from a sentence of SentenceType, for the
	// converters that support the outbound direction.
	Reverse convert.Reverse

	// PCDINFallback tunnels the PGN through $PCDIN when no native
	// conversion applies.
	PCDINFallback bool
}

// RuleSet indexes rules by PGN and by sentence-type tag. Both tables are
// populated from the same rule list; a rule with a native conversion is
// reachable under both keys.
type RuleSet struct {
	byPGN  map[uint32]*Rule
	byType map[string]*Rule
}

// NewRuleSet builds the two lookup tables, rejecting configurations that
// could never route: duplicate keys, a rule with neither a native
// conversion nor the fallback flag, and a forward converter without a
// sentence-type tag.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{
		byPGN:  make(map[uint32]*Rule, len(rules)),
		byType: make(map[string]*Rule),
	}
	for i := range rules {
		r := &rules[i]
		if (r.SentenceType == "") != (r.Forward == nil) {
			return nil, errors.Errorf("pgn %d: sentence type and forward converter must come together", r.PGN)
		}
		if r.Forward == nil && !r.PCDINFallback {
			return nil, errors.Errorf("pgn %d: no native conversion and no pcdin fallback, rule is unreachable", r.PGN)
		}
		if _, dup := rs.byPGN[r.PGN]; dup {
			return nil, errors.Errorf("pgn %d: duplicate rule", r.PGN)
		}
		rs.byPGN[r.PGN] = r
		if r.SentenceType != "" {
			if _, dup := rs.byType[r.SentenceType]; dup {
				return nil, errors.Errorf("sentence type %s: bound to more than one rule", r.SentenceType)
			}
			rs.byType[r.SentenceType] = r
		}
	}
	return rs, nil
}

// ByPGN returns the rule for a PGN, or nil.
func (rs *RuleSet) ByPGN(pgn uint32) *Rule {
	return rs.byPGN[pgn]
}

// ByType returns the rule for a sentence-type tag, or nil.
func (rs *RuleSet) ByType(sentenceType string) *Rule {
	return rs.byType[sentenceType]
}

// PGNs lists the mapped PGNs in ascending order.
func (rs *RuleSet) PGNs() []uint32 {
	keys := maps.Keys(rs.byPGN)
	slices.Sort(keys)
	return keys
}

// SentenceTypes lists the native sentence-type tags in ascending order.
func (rs *RuleSet) SentenceTypes() []string {
	keys := maps.Keys(rs.byType)
	slices.Sort(keys)
	return keys
}

// Profile is the immutable conversion policy for one emulated device.
type Profile struct {
	Name         string
	Manufacturer string
	Model        string

	Rules      *RuleSet
	PCDINUsage PCDINUsage

	// TransmissionPeriods declares the cadence an outbound scheduler
	// should repeat each PGN at. The engine itself runs no timers.
	TransmissionPeriods map[uint32]time.Duration
}
