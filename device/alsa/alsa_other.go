/*
NAME
  alsa_other.go

AUTHOR
  Alan Noble <alan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

//go:build !linux

// Package alsa provides a kcs.SampleSource reading live audio from an
// ALSA capture device. ALSA is Linux-only; on other platforms Open
// always fails.
package alsa

import (
	"errors"

	"github.com/ausocean/kcs"
	"github.com/ausocean/utils/logging"
)

// Source is a stub on non-Linux platforms.
type Source struct{}

// New returns a Source that always fails to Open.
func New(l logging.Logger, title string) *Source { return &Source{} }

// Open always fails; ALSA capture is only available on Linux.
func (s *Source) Open(cfg kcs.Config) (kcs.Config, error) {
	return cfg, errors.New("alsa: not supported on this platform")
}

// Read always fails.
func (s *Source) Read(p []byte) (int, error) { return 0, errors.New("alsa: not supported on this platform") }

// Close is a no-op.
func (s *Source) Close() error { return nil }
