/*
NAME
  file.go

DESCRIPTION
  file.go provides WAV-file backed implementations of kcs.SampleSource
  and kcs.SampleSink.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package file provides kcs.SampleSource and kcs.SampleSink
// implementations backed by WAV files on disk.
package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-audio/audio"
	goaudiowav "github.com/go-audio/wav"

	kcsflac "github.com/ausocean/kcs/codec/flac"
	kcspcm "github.com/ausocean/kcs/codec/pcm"
	kcswav "github.com/ausocean/kcs/codec/wav"
	"github.com/ausocean/utils/logging"
)

// bufferedFrames is the number of PCM sample frames decoded from the
// underlying WAV file at a time.
const bufferedFrames = 4096

// Format describes the PCM layout discovered in (or requested for) a
// WAV file, independent of any kcs.Config - the caller reconciles the
// two when constructing a kcs.Config for decoding/encoding.
type Format struct {
	FrameRate uint
	Channels  uint
	BitDepth  uint
}

// Source is a kcs.SampleSource that reads raw interleaved PCM frames
// out of a WAV file, using go-audio/wav to parse the header and
// decode sample data of any channel count or bit depth.
type Source struct {
	mu      sync.Mutex
	closer  io.Closer
	dec     *goaudiowav.Decoder
	buf     *audio.IntBuffer
	pending []byte
	log     logging.Logger

	Format Format
}

// Open opens the WAV file at path and reads its header.
func Open(path string, log logging.Logger) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open wav file: %w", err)
	}
	return newSource(f, f, log)
}

// OpenFLAC decodes the FLAC file at path to PCM WAV using codec/flac,
// then opens the result exactly as Open does. The whole file is
// decoded into memory up front, the same one-shot transform shape as
// OpenResampled/OpenFiltered/OpenMono, since codec/flac.Decode itself
// needs the complete stream.
func OpenFLAC(path string, log logging.Logger) (*Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read flac file: %w", err)
	}
	wavBytes, err := kcsflac.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("file: could not decode flac: %w", err)
	}
	return newSource(bytes.NewReader(wavBytes), nopCloser{}, log)
}

// nopCloser satisfies io.Closer for sources with nothing to release,
// such as a FLAC file fully decoded into memory before the Source
// backed by its WAV bytes is even constructed.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newSource builds a Source decoding WAV data from r, closed via
// closer when the Source is closed.
func newSource(r io.Reader, closer io.Closer, log logging.Logger) (*Source, error) {
	dec := goaudiowav.NewDecoder(r)
	if !dec.IsValidFile() {
		closer.Close()
		return nil, errors.New("file: not a valid wav file")
	}
	dec.ReadInfo()

	s := &Source{
		closer: closer,
		dec:    dec,
		log:    log,
		Format: Format{
			FrameRate: uint(dec.SampleRate),
			Channels:  uint(dec.NumChans),
			BitDepth:  uint(dec.BitDepth),
		},
	}
	s.buf = &audio.IntBuffer{
		Data:           make([]int, bufferedFrames*int(dec.NumChans)),
		Format:         &audio.Format{NumChannels: int(dec.NumChans), SampleRate: int(dec.SampleRate)},
		SourceBitDepth: int(dec.BitDepth),
	}
	return s, nil
}

// OpenResampled opens the WAV file at path as Open does, then
// downsamples its entire contents to rate before any Read. Only
// downsampling is supported, matching codec/pcm.Resample, and only at
// 16 or 32 bit depth; a rate of 0 is a no-op matching Open.
func OpenResampled(path string, rate uint, log logging.Logger) (*Source, error) {
	s, err := Open(path, log)
	if err != nil {
		return nil, err
	}
	if rate == 0 || rate == s.Format.FrameRate {
		return s, nil
	}

	var sformat kcspcm.SampleFormat
	switch s.Format.BitDepth {
	case 16:
		sformat = kcspcm.S16_LE
	case 32:
		sformat = kcspcm.S32_LE
	default:
		s.Close()
		return nil, fmt.Errorf("file: resampling requires 16 or 32 bit depth, got %d", s.Format.BitDepth)
	}

	raw, err := io.ReadAll(ioReaderFunc(s.Read))
	if err != nil && err != io.EOF {
		s.Close()
		return nil, fmt.Errorf("could not read wav file for resampling: %w", err)
	}

	resampled, err := kcspcm.Resample(kcspcm.Buffer{
		Format: kcspcm.BufferFormat{SFormat: sformat, Rate: s.Format.FrameRate, Channels: s.Format.Channels},
		Data:   raw,
	}, rate)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("file: could not resample to %dHz: %w", rate, err)
	}

	s.pending = resampled.Data
	s.Format.FrameRate = rate
	return s, nil
}

// OpenFiltered opens the WAV file at path as Open does, then applies a
// band-pass filter spanning [lower, upper] Hz to its entire contents
// before any Read, using codec/pcm's FFT-based convolution filter to
// suppress tape hiss and hum outside the KCS tone band. Only 16-bit PCM
// is supported, matching codec/pcm.SelectiveFrequencyFilter's sample
// conversion; taps controls the FIR filter length (more taps means a
// sharper but slower filter).
func OpenFiltered(path string, lower, upper float64, taps int, log logging.Logger) (*Source, error) {
	s, err := Open(path, log)
	if err != nil {
		return nil, err
	}
	if s.Format.BitDepth != 16 {
		s.Close()
		return nil, fmt.Errorf("file: band-pass filtering requires 16-bit PCM, got %d", s.Format.BitDepth)
	}

	raw, err := io.ReadAll(ioReaderFunc(s.Read))
	if err != nil && err != io.EOF {
		s.Close()
		return nil, fmt.Errorf("could not read wav file for filtering: %w", err)
	}

	bfmt := kcspcm.BufferFormat{SFormat: kcspcm.S16_LE, Rate: s.Format.FrameRate, Channels: s.Format.Channels}
	filter, err := kcspcm.NewBandPass(lower, upper, bfmt, taps)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("file: could not build band-pass filter [%g,%g]Hz: %w", lower, upper, err)
	}
	filtered, err := filter.Apply(kcspcm.Buffer{Format: bfmt, Data: raw})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("file: could not apply band-pass filter: %w", err)
	}

	s.pending = filtered
	return s, nil
}

// OpenMono opens the WAV file at path as Open does, then downmixes a
// stereo file to mono by discarding its right channel before any
// Read, using codec/pcm.StereoToMono. A file already recorded in mono
// is returned unchanged, matching StereoToMono's own no-op case; only
// 16 or 32 bit depth is supported.
func OpenMono(path string, log logging.Logger) (*Source, error) {
	s, err := Open(path, log)
	if err != nil {
		return nil, err
	}
	if s.Format.Channels == 1 {
		return s, nil
	}

	var sformat kcspcm.SampleFormat
	switch s.Format.BitDepth {
	case 16:
		sformat = kcspcm.S16_LE
	case 32:
		sformat = kcspcm.S32_LE
	default:
		s.Close()
		return nil, fmt.Errorf("file: mono downmix requires 16 or 32 bit depth, got %d", s.Format.BitDepth)
	}

	raw, err := io.ReadAll(ioReaderFunc(s.Read))
	if err != nil && err != io.EOF {
		s.Close()
		return nil, fmt.Errorf("could not read wav file for mono downmix: %w", err)
	}

	mono, err := kcspcm.StereoToMono(kcspcm.Buffer{
		Format: kcspcm.BufferFormat{SFormat: sformat, Rate: s.Format.FrameRate, Channels: s.Format.Channels},
		Data:   raw,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("file: could not downmix to mono: %w", err)
	}

	s.pending = mono.Data
	s.Format.Channels = 1
	return s, nil
}

// ioReaderFunc adapts a Read method value to io.Reader.
type ioReaderFunc func(p []byte) (int, error)

func (f ioReaderFunc) Read(p []byte) (int, error) { return f(p) }

// Read implements io.Reader, returning raw little-endian PCM bytes
// packed at the file's native bit depth and channel count.
func (s *Source) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.pending) == 0 {
		n, err := s.dec.PCMBuffer(s.buf)
		if n > 0 {
			s.pending = packSamples(s.buf.Data[:n], int(s.Format.BitDepth))
		}
		if err != nil {
			if len(s.pending) == 0 {
				return 0, err
			}
			break
		}
		if n == 0 {
			return 0, io.EOF
		}
	}

	c := copy(p, s.pending)
	s.pending = s.pending[c:]
	return c, nil
}

// Close releases the underlying file, if any.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closer.Close()
}

// packSamples packs decoded integer samples into little-endian bytes
// at the given bit depth, rounding up to a whole byte count per sample.
func packSamples(samples []int, bitDepth int) []byte {
	width := (bitDepth + 7) / 8
	out := make([]byte, len(samples)*width)
	for i, v := range samples {
		u := uint32(int32(v))
		for b := 0; b < width; b++ {
			out[i*width+b] = byte(u >> (8 * uint(b)))
		}
	}
	return out
}

// Sink is a kcs.SampleSink that buffers written PCM frames in memory
// and, on Close, writes them out as a complete WAV file using
// codec/wav's header writer.
type Sink struct {
	mu   sync.Mutex
	f    *os.File
	md   kcswav.Metadata
	data bytes.Buffer
	log  logging.Logger
}

// Create creates (truncating if necessary) the WAV file at path, to be
// written with the given metadata once Close is called.
func Create(path string, md kcswav.Metadata, log logging.Logger) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create wav file: %w", err)
	}
	return &Sink{f: f, md: md, log: log}, nil
}

// Write implements io.Writer, buffering PCM frames until Close.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Write(p)
}

// Close writes the complete WAV file (header and buffered audio) and
// closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := &kcswav.WAV{Metadata: s.md}
	if _, err := w.Write(s.data.Bytes()); err != nil {
		s.f.Close()
		return fmt.Errorf("could not encode wav header: %w", err)
	}
	if _, err := s.f.Write(w.Audio); err != nil {
		s.f.Close()
		return fmt.Errorf("could not write wav file: %w", err)
	}
	return s.f.Close()
}
