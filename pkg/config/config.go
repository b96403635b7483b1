// Package config loads the bridge's YAML configuration file.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openmarine/nmeabridge/pkg/profile"
)

// Config selects the emulated device and the I/O endpoints.
type Config struct {
	// Profile names the device profile to emulate.
	Profile string `yaml:"profile"`

	// Talker is the two-letter NMEA 0183 talker ID for generated
	// sentences.
	Talker string `yaml:"talker"`

	// Input is the RAW log file to read frames from; "-" means stdin.
	Input string `yaml:"input"`

	// Output receives the generated sentences; "-" means stdout.
	Output string `yaml:"output"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Profile: profile.ActisenseNGW1,
		Talker:  "II",
		Input:   "-",
		Output:  "-",
	}
}

// Load reads and validates a YAML configuration file. Omitted fields keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the fields against what the bridge can run with.
func (c Config) Validate() error {
	if _, err := profile.Load(c.Profile); err != nil {
		return err
	}
	if len(c.Talker) != 2 {
		return errors.Errorf("talker %q must be exactly two characters", c.Talker)
	}
	for _, r := range c.Talker {
		if r < 'A' || r > 'Z' {
			return errors.Errorf("talker %q must be upper-case letters", c.Talker)
		}
	}
	if c.Input == "" {
		return errors.New("input must be a file path or -")
	}
	if c.Output == "" {
		return errors.New("output must be a file path or -")
	}
	return nil
}
