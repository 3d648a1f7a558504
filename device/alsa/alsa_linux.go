/*
NAME
  alsa_linux.go

AUTHOR
  Alan Noble <alan@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package alsa provides a kcs.SampleSource reading live audio from an
// ALSA capture device.
package alsa

import (
	"errors"
	"fmt"
	"sync"

	yalsa "github.com/yobert/alsa"

	"github.com/ausocean/kcs"
	"github.com/ausocean/utils/logging"
)

// Source is a kcs.SampleSource backed by a live ALSA capture device.
type Source struct {
	l     logging.Logger
	mu    sync.Mutex
	dev   *yalsa.Device
	title string
}

// New returns a Source that logs to l. Title, if non-empty, selects a
// specific ALSA device by its title; an empty title selects the first
// recording-capable PCM device found.
func New(l logging.Logger, title string) *Source {
	return &Source{l: l, title: title}
}

// Open finds and negotiates an ALSA capture device matching cfg as
// closely as hardware allows, and returns the Config reflecting what
// was actually negotiated - callers must use the returned Config, not
// the one passed in, to build a SignChangeExtractor/CodecSession.
func (s *Source) Open(cfg kcs.Config) (kcs.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.l.Debug("opening sound card")
	cards, err := yalsa.OpenCards()
	if err != nil {
		return cfg, fmt.Errorf("alsa: could not open cards: %w", err)
	}
	defer yalsa.CloseCards(cards)

	s.l.Debug("finding capture device")
	for _, card := range cards {
		devices, err := card.Devices()
		if err != nil {
			continue
		}
		for _, dev := range devices {
			if dev.Type != yalsa.PCM || !dev.Record {
				continue
			}
			if dev.Title == s.title || s.title == "" {
				s.dev = dev
				break
			}
		}
		if s.dev != nil {
			break
		}
	}
	if s.dev == nil {
		return cfg, errors.New("alsa: no capture device found")
	}

	if err := s.dev.Open(); err != nil {
		return cfg, fmt.Errorf("alsa: could not open device: %w", err)
	}

	channels, err := s.dev.NegotiateChannels(int(cfg.Channels))
	if err != nil {
		return cfg, fmt.Errorf("alsa: could not negotiate %d channel(s): %w", cfg.Channels, err)
	}
	s.l.Debug("alsa channels negotiated", "channels", channels)

	rate, err := s.dev.NegotiateRate(int(cfg.FrameRate))
	if err != nil {
		return cfg, fmt.Errorf("alsa: could not negotiate %dHz rate: %w", cfg.FrameRate, err)
	}
	s.l.Debug("alsa rate negotiated", "rate", rate)

	var want yalsa.FormatType
	switch cfg.SampleWidthBits {
	case 16:
		want = yalsa.S16_LE
	case 32:
		want = yalsa.S32_LE
	default:
		return cfg, fmt.Errorf("alsa: unsupported sample width %d bits", cfg.SampleWidthBits)
	}
	format, err := s.dev.NegotiateFormat(want)
	if err != nil {
		return cfg, fmt.Errorf("alsa: could not negotiate sample format: %w", err)
	}
	var bitDepth uint
	switch format {
	case yalsa.S16_LE:
		bitDepth = 16
	case yalsa.S32_LE:
		bitDepth = 32
	default:
		return cfg, fmt.Errorf("alsa: device negotiated unsupported format %v", format)
	}

	periodSize, err := s.dev.NegotiatePeriodSize(int(rate) / 20)
	if err != nil {
		return cfg, fmt.Errorf("alsa: could not negotiate period size: %w", err)
	}
	s.l.Debug("alsa period size negotiated", "periodsize", periodSize)

	if _, err := s.dev.NegotiateBufferSize(periodSize * 4); err != nil {
		return cfg, fmt.Errorf("alsa: could not negotiate buffer size: %w", err)
	}

	if err := s.dev.Prepare(); err != nil {
		return cfg, fmt.Errorf("alsa: could not prepare device: %w", err)
	}

	cfg.FrameRate = uint(rate)
	cfg.Channels = uint(channels)
	cfg.SampleWidthBits = bitDepth
	return cfg, nil
}

// Read implements io.Reader, reading directly from the ALSA device.
func (s *Source) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return 0, errors.New("alsa: device not open")
	}
	if err := s.dev.Read(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the ALSA device.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return nil
	}
	err := s.dev.Close()
	s.dev = nil
	return err
}
