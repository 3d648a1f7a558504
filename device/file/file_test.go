/*
NAME
  file_test.go

AUTHORS
  Scott Barnard <scott@ausocean.org>
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package file

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	kcswav "github.com/ausocean/kcs/codec/wav"
	"github.com/ausocean/utils/logging"
)

func TestSinkSourceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	log := (*logging.TestLogger)(t)

	md := kcswav.Metadata{AudioFormat: kcswav.PCMFormat, Channels: 1, SampleRate: 48000, BitDepth: 8}
	sink, err := Create(path, md, log)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	want := []byte{0x00, 0xff, 0x7f, 0x80, 0x01, 0xfe}
	if _, err := sink.Write(want); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	src, err := Open(path, log)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	if src.Format.FrameRate != 48000 || src.Format.Channels != 1 || src.Format.BitDepth != 8 {
		t.Errorf("unexpected format: %+v", src.Format)
	}

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d bytes, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestOpenResampled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	log := (*logging.TestLogger)(t)

	md := kcswav.Metadata{AudioFormat: kcswav.PCMFormat, Channels: 1, SampleRate: 48000, BitDepth: 16}
	sink, err := Create(path, md, log)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	samples := make([]byte, 0, 48*2)
	for i := 0; i < 48; i++ {
		samples = append(samples, byte(i), byte(i))
	}
	if _, err := sink.Write(samples); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	src, err := OpenResampled(path, 8000, log)
	if err != nil {
		t.Fatalf("OpenResampled() error = %v", err)
	}
	defer src.Close()

	if src.Format.FrameRate != 8000 {
		t.Errorf("FrameRate = %v, want 8000", src.Format.FrameRate)
	}

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != len(samples)/6 {
		t.Errorf("got %d bytes, want %d", len(got), len(samples)/6)
	}
}

func TestOpenMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	log := (*logging.TestLogger)(t)

	md := kcswav.Metadata{AudioFormat: kcswav.PCMFormat, Channels: 2, SampleRate: 48000, BitDepth: 16}
	sink, err := Create(path, md, log)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Interleaved stereo frames: left channel counts up, right channel
	// counts down, so a correct downmix keeps only the ascending bytes.
	const n = 16
	samples := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		samples = append(samples, byte(i), byte(i), byte(n-i), byte(n-i))
	}
	if _, err := sink.Write(samples); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	src, err := OpenMono(path, log)
	if err != nil {
		t.Fatalf("OpenMono() error = %v", err)
	}
	defer src.Close()

	if src.Format.Channels != 1 {
		t.Errorf("Channels = %d, want 1", src.Format.Channels)
	}

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != n*2 {
		t.Fatalf("got %d bytes, want %d", len(got), n*2)
	}
	for i := 0; i < n; i++ {
		if got[i*2] != byte(i) || got[i*2+1] != byte(i) {
			t.Errorf("frame %d = %#x %#x, want left channel %#x %#x", i, got[i*2], got[i*2+1], byte(i), byte(i))
		}
	}
}

func TestOpenMonoNoopOnMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	log := (*logging.TestLogger)(t)

	md := kcswav.Metadata{AudioFormat: kcswav.PCMFormat, Channels: 1, SampleRate: 48000, BitDepth: 16}
	sink, err := Create(path, md, log)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04}
	if _, err := sink.Write(want); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	src, err := OpenMono(path, log)
	if err != nil {
		t.Fatalf("OpenMono() error = %v", err)
	}
	defer src.Close()

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestOpenFiltered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	log := (*logging.TestLogger)(t)

	md := kcswav.Metadata{AudioFormat: kcswav.PCMFormat, Channels: 1, SampleRate: 48000, BitDepth: 16}
	sink, err := Create(path, md, log)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// A short burst of alternating extremes, standing in for a noisy
	// square-ish tone; the filter need only run without error and
	// preserve the sample count, not reproduce an exact waveform.
	const n = 512
	samples := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			samples = append(samples, 0xff, 0x7f)
		} else {
			samples = append(samples, 0x01, 0x80)
		}
	}
	if _, err := sink.Write(samples); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	src, err := OpenFiltered(path, 1000, 6000, 63, log)
	if err != nil {
		t.Fatalf("OpenFiltered() error = %v", err)
	}
	defer src.Close()

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	// The band-pass filter convolves a high-pass and a low-pass filter of
	// taps+1 coefficients each, giving 2*taps+1 coefficients, so the full
	// linear convolution of codec/pcm.fastConvolve lengthens the signal
	// by 2*taps samples (2 bytes each).
	const taps = 63
	want := len(samples) + 2*taps*2
	if len(got) != want {
		t.Errorf("got %d filtered bytes, want %d", len(got), want)
	}
}

func TestOpenFilteredRejects8Bit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	log := (*logging.TestLogger)(t)

	md := kcswav.Metadata{AudioFormat: kcswav.PCMFormat, Channels: 1, SampleRate: 48000, BitDepth: 8}
	sink, err := Create(path, md, log)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := sink.Write([]byte{0x00, 0xff}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err = OpenFiltered(path, 1000, 6000, 63, log)
	if err == nil {
		t.Error("OpenFiltered() on 8-bit PCM: got nil error, want non-nil")
	}
}

func TestOpenFLACRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-flac.bin")
	if err := os.WriteFile(path, []byte("not a flac stream"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := OpenFLAC(path, (*logging.TestLogger)(t))
	if err == nil {
		t.Error("OpenFLAC() on non-flac data: got nil error, want non-nil")
	}
}

func TestOpenRejectsNonWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-wav.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := Open(path, (*logging.TestLogger)(t))
	if err == nil {
		t.Error("Open() on a non-wav file: got nil error, want non-nil")
	}
}
