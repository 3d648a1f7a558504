/*
NAME
  profile.go

DESCRIPTION
  profile.go loads named KCS Config presets from a YAML file for the
  kcsdecode/kcsencode command line clients.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package profile loads kcs.Config presets from YAML files, letting a
// command line client store a named set of parameters (e.g.
// "fx502p-fast") instead of repeating flags on every invocation.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ausocean/kcs"
)

// file is the on-disk shape of a profile YAML document.
type file struct {
	FrameRate       uint   `yaml:"rate"`
	SampleWidthBits uint   `yaml:"width"`
	Channels        uint   `yaml:"channels"`
	BaseFreq        uint   `yaml:"basefreq"`
	Parity          string `yaml:"parity"`
}

// Load reads the profile at path and returns the Config it describes.
// An empty path returns a zero Config, so callers can rely on
// kcs.Config.Validate to supply defaults. The returned Config is not
// validated; callers apply flag overrides first and validate once.
func Load(path string) (kcs.Config, error) {
	if path == "" {
		return kcs.Config{}, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return kcs.Config{}, fmt.Errorf("profile: could not read %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return kcs.Config{}, fmt.Errorf("profile: could not parse %s: %w", path, err)
	}

	cfg := kcs.Config{
		FrameRate:       f.FrameRate,
		SampleWidthBits: f.SampleWidthBits,
		Channels:        f.Channels,
		BaseFreq:        f.BaseFreq,
	}
	parity, err := parseParity(f.Parity)
	if err != nil {
		return kcs.Config{}, err
	}
	cfg.Parity = parity
	return cfg, nil
}

// ApplyFlags overrides cfg's fields with any non-zero flag values,
// used by the CLI commands after loading a profile. A parity string
// other than "", "none", "even" or "odd" is ignored, leaving
// cfg.Parity unchanged.
func ApplyFlags(cfg *kcs.Config, rate, width, channels, baseFreq uint, parity string) {
	if rate != 0 {
		cfg.FrameRate = rate
	}
	if width != 0 {
		cfg.SampleWidthBits = width
	}
	if channels != 0 {
		cfg.Channels = channels
	}
	if baseFreq != 0 {
		cfg.BaseFreq = baseFreq
	}
	if parity != "" {
		if p, err := parseParity(parity); err == nil {
			cfg.Parity = p
		}
	}
}

func parseParity(s string) (kcs.Parity, error) {
	switch s {
	case "", "none":
		return kcs.ParityNone, nil
	case "even":
		return kcs.ParityEven, nil
	case "odd":
		return kcs.ParityOdd, nil
	default:
		return kcs.ParityNone, fmt.Errorf("profile: unknown parity %q", s)
	}
}
