/*
NAME
  flac.go

DESCRIPTION
  flac.go decodes FLAC-compressed audio to PCM WAV bytes, for tape
  captures archived in FLAC rather than raw WAV.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package flac decodes FLAC-compressed audio into PCM WAV bytes, using
// github.com/mewkiz/flac for stream parsing and github.com/go-audio/wav
// for the output container, the same encoder codec/wav's caller-facing
// packages already depend on.
package flac

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	goaudiowav "github.com/go-audio/wav"
	"github.com/mewkiz/flac"
)

const wavFormat = 1 // PCM, matching go-audio/wav.NewEncoder's audioFormat parameter.

// seekBuffer is an in-memory io.WriteSeeker, since go-audio/wav.Encoder
// requires one to backpatch the RIFF/data chunk sizes once the full
// length is known.
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.buf) {
		grown := make([]byte, end)
		copy(grown, b.buf)
		b.buf = grown
	}
	copy(b.buf[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(b.pos) + offset
	case io.SeekEnd:
		pos = int64(len(b.buf)) + offset
	}
	if pos < 0 {
		return 0, fmt.Errorf("flac: negative seek position")
	}
	b.pos = int(pos)
	return pos, nil
}

// Decode parses buf as a FLAC stream and returns an equivalent PCM WAV
// file's bytes.
func Decode(buf []byte) ([]byte, error) {
	stream, err := flac.Parse(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("flac: could not parse stream: %w", err)
	}

	dst := &seekBuffer{}
	sr := int(stream.Info.SampleRate)
	bps := int(stream.Info.BitsPerSample)
	nc := int(stream.Info.NChannels)
	enc := goaudiowav.NewEncoder(dst, sr, bps, nc, wavFormat)

	if err := decodeFrames(stream, enc, sr, bps, nc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("flac: could not finalize wav encoding: %w", err)
	}
	return dst.buf, nil
}

// decodeFrames walks every frame of stream, re-interleaving its
// subframe samples into WAV frames written to enc.
func decodeFrames(stream *flac.Stream, enc *goaudiowav.Encoder, sr, bps, nc int) error {
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: nc, SampleRate: sr},
		SourceBitDepth: bps,
	}
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("flac: could not parse frame: %w", err)
		}

		n := frame.Subframes[0].NSamples
		data := make([]int, 0, n*len(frame.Subframes))
		for i := 0; i < n; i++ {
			for _, sub := range frame.Subframes {
				data = append(data, int(sub.Samples[i]))
			}
		}
		ib.Data = data
		if err := enc.Write(ib); err != nil {
			return fmt.Errorf("flac: could not encode wav frame: %w", err)
		}
	}
}
