// Package bridge is the conversion engine of the emulated gateway: it takes
// decoded PGN frames and produces NMEA 0183 sentences according to a device
// profile, and parses sentences back into PGN frames. The engine is
// stateless and safe for concurrent use; profiles are read-only once loaded.
package bridge

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/openmarine/nmeabridge/pkg/convert"
	"github.com/openmarine/nmeabridge/pkg/pcdin"
	"github.com/openmarine/nmeabridge/pkg/pgn"
	"github.com/openmarine/nmeabridge/pkg/profile"
)

// Conversion methods reported in a Result.
const (
	MethodNative = "native"
	MethodPCDIN  = "pcdin"
	MethodFailed = "failed"
)

// Result reports one PGN-to-sentence conversion. Successful results carry at
// least one sentence; failed results carry none and explain why in Errors.
type Result struct {
	Sentences  []string
	Successful bool
	Method     string
	Errors     []string
}

func failure(errs ...string) Result {
	return Result{Method: MethodFailed, Errors: errs}
}

// Engine converts between PGN frames and NMEA 0183 sentences for one device
// profile.
type Engine struct {
	profile *profile.Profile
	talker  string
	log     *logrus.Logger
}

// NewEngine builds an engine for the given profile. An empty talker falls
// back to the conventional integrated-instrumentation ID; a nil logger uses
// the logrus standard logger.
func NewEngine(p *profile.Profile, talker string, log *logrus.Logger) *Engine {
	if talker == "" {
		talker = convert.DefaultTalker
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{profile: p, talker: talker, log: log}
}

// Profile returns the engine's device profile.
func (e *Engine) Profile() *profile.Profile {
	return e.profile
}

// SupportedPGNs lists the PGNs the profile maps, natively or via fallback.
func (e *Engine) SupportedPGNs() []uint32 {
	return e.profile.Rules.PGNs()
}

// SupportedSentenceTypes lists the native sentence-type tags of the profile.
func (e *Engine) SupportedSentenceTypes() []string {
	return e.profile.Rules.SentenceTypes()
}

// ConvertPGNToSentences converts one decoded PGN into sentences. Routing
// follows the profile: a native rule runs its converter, a fallback-flagged
// rule tunnels through $PCDIN, and an unmapped PGN tunnels only when the
// profile's PCDIN usage is extensive.
func (e *Engine) ConvertPGNToSentences(d pgn.PGNData) Result {
	if err := d.Validate(); err != nil {
		return failure(err.Error())
	}

	rule := e.profile.Rules.ByPGN(d.PGN)
	if rule == nil {
		if e.profile.PCDINUsage == profile.UsageExtensive {
			return e.encapsulate(d)
		}
		return failure(fmt.Sprintf("no conversion rule for PGN %d", d.PGN))
	}

	if rule.Forward != nil {
		sentences, err := e.runForward(rule.Forward, d)
		if err != nil {
			e.log.WithFields(logrus.Fields{"pgn": d.PGN, "type": rule.SentenceType}).
				WithError(err).Debug("native conversion failed")
			return failure(err.Error())
		}
		if len(sentences) == 0 {
			return failure(fmt.Sprintf("PGN %d: converter produced no sentences", d.PGN))
		}
		return Result{Sentences: sentences, Successful: true, Method: MethodNative}
	}

	return e.encapsulate(d)
}

// runForward shields the engine from a panicking converter so one malformed
// payload cannot take the whole bridge down.
func (e *Engine) runForward(fwd convert.Forward, d pgn.PGNData) (sentences []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PGN %d: converter panic: %v", d.PGN, r)
		}
	}()
	return fwd(e.talker, d)
}

func (e *Engine) encapsulate(d pgn.PGNData) Result {
	sentence, err := pcdin.Encode(pcdin.FromPGNData(d))
	if err != nil {
		return failure(err.Error())
	}
	return Result{Sentences: []string{sentence}, Successful: true, Method: MethodPCDIN}
}

// ConvertSentenceToPGN parses one NMEA 0183 sentence back into a PGN frame.
// $PCDIN sentences decode regardless of profile; anything else routes
// through the profile's reverse converter for its sentence type. Sentences
// the profile cannot place, and malformed ones, return nil.
func (e *Engine) ConvertSentenceToPGN(sentence string) *pgn.PGNData {
	sentence = strings.TrimSpace(sentence)
	if strings.HasPrefix(sentence, "$PCDIN,") {
		return pcdin.Decode(sentence)
	}
	if len(sentence) < 6 || sentence[0] != '$' {
		return nil
	}
	rule := e.profile.Rules.ByType(sentence[3:6])
	if rule == nil || rule.Reverse == nil {
		return nil
	}
	return rule.Reverse(sentence)
}
