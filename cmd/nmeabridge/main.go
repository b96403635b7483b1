// Command nmeabridge replays a RAW NMEA 2000 capture through the conversion
// engine of an emulated bridge device and prints the NMEA 0183 sentences the
// device would produce. With -reverse it runs the other way, turning a
// sentence log back into RAW CAN frames.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/openmarine/nmeabridge/pkg/adapter/canadapter"
	"github.com/openmarine/nmeabridge/pkg/bridge"
	"github.com/openmarine/nmeabridge/pkg/config"
	"github.com/openmarine/nmeabridge/pkg/endpoint/rawendpoint"
	"github.com/openmarine/nmeabridge/pkg/pgn"
	"github.com/openmarine/nmeabridge/pkg/profile"
)

// sentenceSink feeds complete PGNs through the engine and writes the
// resulting sentences out.
type sentenceSink struct {
	engine *bridge.Engine
	out    io.Writer
	log    *logrus.Logger
}

func (s *sentenceSink) HandlePGN(d pgn.PGNData) {
	res := s.engine.ConvertPGNToSentences(d)
	if !res.Successful {
		s.log.WithFields(logrus.Fields{"pgn": d.PGN, "errors": res.Errors}).Debug("frame not converted")
		return
	}
	for _, sentence := range res.Sentences {
		fmt.Fprintln(s.out, sentence)
	}
}

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()

	var configPath, profileName, talker, input, output string
	flag.StringVar(&configPath, "config", "", "optional YAML configuration file")
	flag.StringVar(&profileName, "profile", "", "device profile to emulate (see -list)")
	flag.StringVar(&talker, "talker", "", "two-letter talker ID for generated sentences")
	flag.StringVar(&input, "input", "", "RAW capture file to replay, - for stdin")
	flag.StringVar(&output, "output", "", "sentence output file, - for stdout")
	var list, reverse bool
	flag.BoolVar(&list, "list", false, "list known device profiles and exit")
	flag.BoolVar(&reverse, "reverse", false, "read 0183 sentences and emit RAW CAN frames instead")
	flag.Parse()

	log := logrus.StandardLogger()

	if list {
		for _, name := range profile.Names() {
			fmt.Println(name)
		}
		return
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.WithError(err).Error("configuration rejected")
			exitCode = 1
			return
		}
	}
	// Flags override the file.
	if profileName != "" {
		cfg.Profile = profileName
	}
	if talker != "" {
		cfg.Talker = talker
	}
	if input != "" {
		cfg.Input = input
	}
	if output != "" {
		cfg.Output = output
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("configuration rejected")
		exitCode = 1
		return
	}

	prof, err := profile.Load(cfg.Profile)
	if err != nil {
		log.WithError(err).Error("profile load failed")
		exitCode = 1
		return
	}

	out := io.Writer(os.Stdout)
	if cfg.Output != "-" {
		file, err := os.Create(cfg.Output)
		if err != nil {
			log.WithError(err).Error("output file failed to open")
			exitCode = 1
			return
		}
		defer file.Close()
		out = file
	}

	engine := bridge.NewEngine(prof, cfg.Talker, log)
	ca := canadapter.NewCANAdapter(log)

	if reverse {
		ca.SetWriter(rawendpoint.NewRawWriter(out, log))
		if err := runReverse(engine, ca, cfg.Input, log); err != nil {
			log.WithError(err).Error("reverse run failed")
			exitCode = 1
		}
		return
	}

	ca.SetOutput(&sentenceSink{engine: engine, out: out, log: log})
	ep := rawendpoint.NewRawEndpoint(cfg.Input, log)
	ep.SetOutput(ca)

	log.WithFields(logrus.Fields{"profile": prof.Name, "talker": cfg.Talker, "input": cfg.Input}).
		Info("replaying capture")
	if err := ep.Run(context.Background()); err != nil {
		log.WithError(err).Error("replay failed")
		exitCode = 1
		return
	}
}

// runReverse reads one sentence per line and emits the frames of every PGN
// the profile can rebuild from it. Unparseable lines are skipped.
func runReverse(engine *bridge.Engine, ca *canadapter.CANAdapter, input string, log *logrus.Logger) error {
	var in io.Reader = os.Stdin
	if input != "-" {
		file, err := os.Open(input)
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		d := engine.ConvertSentenceToPGN(line)
		if d == nil {
			log.Debugf("no PGN for sentence %q", line)
			continue
		}
		if err := ca.WritePGN(*d); err != nil {
			log.WithError(err).Warnf("frame emission failed for %q", line)
		}
	}
	return scanner.Err()
}
