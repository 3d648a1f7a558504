/*
NAME
  config.go

DESCRIPTION
  config.go contains the configuration settings for a KCS codec session.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package kcs provides a codec for the Kansas City Standard (KCS) audio
// serial protocol: encoding bytes as frequency-shift-keyed audio tones
// and decoding such audio back into bytes.
package kcs

import (
	"fmt"

	"github.com/ausocean/utils/logging"
)

// Parity represents the parity scheme used to frame KCS bytes.
type Parity int

// The parity schemes that a Config may select.
const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// String returns the string representation of a Parity.
func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "unknown"
	}
}

// Default configuration values, used whenever a Config field is left
// unset (zero-valued) or fails validation.
const (
	DefaultFrameRate       = 48000
	DefaultSampleWidthBits = 8
	DefaultChannels        = 1
	DefaultBaseFreq        = 2400
	DefaultGain            = 1.0
	minLeadInSeconds       = 0.5
)

// Config provides the immutable parameters for a KCS codec session. A
// zero-valued field is replaced by its corresponding Default constant
// by Validate, matching the defaulting behaviour of
// device/alsa.ALSA.Setup in the teacher repo.
type Config struct {
	// FrameRate is the PCM sampling frequency in Hz.
	FrameRate uint

	// SampleWidthBits is the number of bits per PCM sample.
	SampleWidthBits uint

	// Channels is the number of PCM channels in the underlying stream.
	// Only the first channel is used; see strideBytes/msbOffset.
	Channels uint

	// BaseFreq is the KCS base tone in Hz.
	BaseFreq uint

	// Parity selects the parity scheme framed with each byte.
	Parity Parity

	// Gain is a scalar applied by the external sample sink/source; the
	// core never applies it itself.
	Gain float64

	// Logger receives diagnostic output from a CodecSession and its
	// collaborators. If nil, a no-op logger is used.
	Logger logging.Logger
}

// ConfigErrors collects non-fatal configuration problems, each of which
// was defaulted rather than rejected outright. It is returned alongside
// a usable Config, mirroring device.MultiError's use in the teacher
// repo's device packages.
type ConfigErrors []error

func (e ConfigErrors) Error() string {
	if len(e) == 0 {
		panic("kcs: invalid use of ConfigErrors")
	}
	return fmt.Sprintf("%v", []error(e))
}

// Validate returns a copy of c with invalid or zero fields replaced by
// defaults. If FrameRate, SampleWidthBits, Channels or BaseFreq required
// defaulting, the returned error is a non-nil ConfigErrors; a zero Gain
// or nil Logger is defaulted without an error. The returned Config is
// always usable.
func (c Config) Validate() (Config, error) {
	var errs ConfigErrors

	if c.FrameRate == 0 {
		errs = append(errs, fmt.Errorf("invalid frame rate, defaulting to %d", DefaultFrameRate))
		c.FrameRate = DefaultFrameRate
	}
	if c.SampleWidthBits == 0 {
		errs = append(errs, fmt.Errorf("invalid sample width, defaulting to %d", DefaultSampleWidthBits))
		c.SampleWidthBits = DefaultSampleWidthBits
	}
	if c.Channels == 0 {
		errs = append(errs, fmt.Errorf("invalid channel count, defaulting to %d", DefaultChannels))
		c.Channels = DefaultChannels
	}
	if c.BaseFreq == 0 {
		errs = append(errs, fmt.Errorf("invalid base frequency, defaulting to %d", DefaultBaseFreq))
		c.BaseFreq = DefaultBaseFreq
	}
	if c.FrameRate <= 2*c.BaseFreq {
		errs = append(errs, fmt.Errorf("frame rate %d does not satisfy Nyquist margin over base frequency %d, defaulting frame rate to %d", c.FrameRate, c.BaseFreq, DefaultFrameRate))
		c.FrameRate = DefaultFrameRate
	}
	if c.Gain == 0 {
		c.Gain = DefaultGain
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}

	if len(errs) != 0 {
		return c, errs
	}
	return c, nil
}

// FramesPerBit returns the number of PCM sample frames spanning one
// data bit, per spec.md §3: round(frame_rate * 8 / base_freq).
func (c Config) FramesPerBit() int {
	return int(float64(c.FrameRate)*8/float64(c.BaseFreq) + 0.5)
}

// FramesPerHalfWave returns the number of PCM sample frames in one
// half-cycle of the base tone, per spec.md §3:
// floor(frame_rate / base_freq / 2).
func (c Config) FramesPerHalfWave() int {
	return int(c.FrameRate) / (int(c.BaseFreq) * 2)
}

// BitThreshold returns the sign-change count, within a FramesPerBit
// window, at or above which a bit is classified "1". Spec.md §9 open
// question #2: derived from the reference 12-at-160 ratio so it
// remains valid at other (frame_rate, base_freq) configurations.
func (c Config) BitThreshold() int {
	const (
		refFramesPerBit = 160
		refThreshold    = 12
	)
	t := c.FramesPerBit() * refThreshold / refFramesPerBit
	if t < 1 {
		t = 1
	}
	return t
}

// sampleWidthBytes returns the number of bytes per PCM sample.
func (c Config) sampleWidthBytes() int {
	return int((c.SampleWidthBits + 7) / 8)
}

// strideBytes returns the byte stride between successive samples of
// the first channel in an interleaved PCM byte stream.
func (c Config) strideBytes() int {
	return c.sampleWidthBytes() * int(c.Channels)
}

// msbOffset returns the offset, within a sample's stride, of the
// highest-order byte of the first channel - the byte the sign-change
// extractor inspects.
func (c Config) msbOffset() int {
	return c.sampleWidthBytes() - 1
}

// noopLogger discards all log calls; used when Config.Logger is nil.
type noopLogger struct{}

func (noopLogger) SetLevel(l int8)                                 {}
func (noopLogger) SetSuppress(suppress bool)                       {}
func (noopLogger) Log(level int8, msg string, params ...interface{}) {}
func (noopLogger) Debug(msg string, params ...interface{})         {}
func (noopLogger) Info(msg string, params ...interface{})          {}
func (noopLogger) Warning(msg string, params ...interface{})       {}
func (noopLogger) Error(msg string, params ...interface{})         {}
func (noopLogger) Fatal(msg string, params ...interface{})         {}
