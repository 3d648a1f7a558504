/*
NAME
  signchange.go

DESCRIPTION
  signchange.go implements the SignChangeExtractor: a pull iterator
  that turns a raw PCM byte stream into a lazy boolean stream of
  sign-change bits.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package kcs

import (
	"io"

	"github.com/ausocean/kcs/codec/codecutil"
)

// SampleSource is the collaborator that yields raw PCM frames,
// interleaved by channel, little-endian sample byte order. The
// session consumes it with back-pressure, i.e. a plain io.Reader, and
// owns it for its lifetime, closing it via io.Closer - the read-side
// counterpart of SampleSink.
type SampleSource interface {
	io.Reader
	io.Closer
}

// nopCloseSource adapts a bare io.Reader to SampleSource for callers
// with nothing meaningful to release, mirroring the standard library's
// io.NopCloser.
type nopCloseSource struct{ io.Reader }

func (nopCloseSource) Close() error { return nil }

// NewSampleSource adapts r to SampleSource. If r already implements
// SampleSource it is returned unchanged; otherwise Close is a no-op,
// matching io.NopCloser's behaviour for callers (tests, in-memory
// buffers) with no underlying resource to release.
func NewSampleSource(r io.Reader) SampleSource {
	if src, ok := r.(SampleSource); ok {
		return src
	}
	return nopCloseSource{r}
}

// chunkFractionOfSecond divides one second of PCM frames to give the
// amount read from the source at a time (100ms); this amortizes
// SampleSource calls without growing the extractor's working set
// beyond a small multiple of FramesPerBit.
const chunkFractionOfSecond = 10

// SignChangeExtractor reads raw PCM bytes from a SampleSource and
// exposes them as a lazy stream of sign-change bits: true iff the
// most-significant bit of the current sample's highest-order byte
// (first channel only) differs from that of the previous sample.
//
// The initial "previous MSB" is 0, so the very first sample produces
// true iff its MSB is set; this is acceptable because meaningful
// framing only begins after lead-in detection (spec.md §4.1).
type SignChangeExtractor struct {
	scan   *codecutil.ByteScanner
	stride int
	offset int

	prevMSB byte
	err     error
	done    bool
}

// NewSignChangeExtractor returns a SignChangeExtractor reading from
// src under the given Config.
func NewSignChangeExtractor(src SampleSource, cfg Config) *SignChangeExtractor {
	chunk := int(cfg.FrameRate) * cfg.strideBytes() / chunkFractionOfSecond
	if chunk < cfg.strideBytes() {
		chunk = cfg.strideBytes()
	}
	return &SignChangeExtractor{
		scan:   codecutil.NewByteScanner(src, make([]byte, chunk)),
		stride: cfg.strideBytes(),
		offset: cfg.msbOffset(),
	}
}

// Next returns the next sign-change bit. ok is false at end of stream;
// Err distinguishes a clean EOF (Err returns nil) from an underlying
// SampleSource failure (Err returns a wrapped KCSError of kind Source).
func (s *SignChangeExtractor) Next() (bit bool, ok bool) {
	if s.done || s.err != nil {
		return false, false
	}

	// Skip to the highest-order byte of the first channel, discarding
	// the other bytes of this sample and any other channels.
	for i := 0; i < s.offset; i++ {
		_, err := s.scan.ReadByte()
		if err != nil {
			s.setErr(err)
			return false, false
		}
	}
	msByte, err := s.scan.ReadByte()
	if err != nil {
		s.setErr(err)
		return false, false
	}
	for i := s.offset + 1; i < s.stride; i++ {
		_, err := s.scan.ReadByte()
		if err != nil {
			s.setErr(err)
			return false, false
		}
	}

	msb := msByte & 0x80
	bit = msb != s.prevMSB
	s.prevMSB = msb
	return bit, true
}

// Err returns the first non-EOF error encountered, wrapped as a
// KCSError of kind Source, or nil if the stream ended cleanly or has
// not yet ended.
func (s *SignChangeExtractor) Err() error { return s.err }

func (s *SignChangeExtractor) setErr(err error) {
	if err == io.EOF {
		s.done = true
		return
	}
	s.err = wrapErr(Source, "sample source read failed", err)
}
