/*
NAME
  encoder.go

DESCRIPTION
  encoder.go implements the WaveformEncoder: rendering framed bytes as
  Kansas City Standard square-wave audio.

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

// WaveformEncoder renders bytes as KCS audio: a "0" bit is four cycles
// of a half-base-frequency tone, a "1" bit (and the lead-in) is eight
// cycles of the base-frequency tone, both spanning the same time
// window, per spec.md §5. The lead-in reuses the "1" waveform rather
// than a dedicated tone; it changes sign every FramesPerHalfWave
// frames, giving about BaseFreq sign changes per half second, which is
// the count LeadInDetector accepts.
type WaveformEncoder struct {
	sink SampleSink
	cfg  Config

	waveZero []bool
	waveOne  []bool

	highFrame []byte
	lowFrame  []byte
}

// NewWaveformEncoder returns a WaveformEncoder writing PCM frames to
// sink under cfg.
func NewWaveformEncoder(sink SampleSink, cfg Config) *WaveformEncoder {
	fphw := cfg.FramesPerHalfWave()
	if fphw < 1 {
		fphw = 1
	}

	stride := cfg.strideBytes()
	return &WaveformEncoder{
		sink:      sink,
		cfg:       cfg,
		waveZero:  buildWave(2*fphw, 2*fphw, 4),
		waveOne:   buildWave(fphw, fphw, 8),
		highFrame: repeatedByte(0xff, stride),
		lowFrame:  repeatedByte(0x00, stride),
	}
}

// buildWave returns a sequence of booleans describing reps repetitions
// of a cycle that is high for highLen samples then low for lowLen
// samples - true meaning the high PCM state, false the low state.
func buildWave(highLen, lowLen, reps int) []bool {
	cycle := make([]bool, highLen+lowLen)
	for i := 0; i < highLen; i++ {
		cycle[i] = true
	}
	wave := make([]bool, 0, len(cycle)*reps)
	for i := 0; i < reps; i++ {
		wave = append(wave, cycle...)
	}
	return wave
}

// repeatedByte returns a slice of n copies of b.
func repeatedByte(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// WriteLeadIn writes a continuous base-frequency tone lasting secs
// seconds, rounded to the nearest whole "1" waveform (at least one). A
// non-positive secs writes minLeadInSeconds (half a second) of tone.
func (e *WaveformEncoder) WriteLeadIn(secs float64) error {
	if secs <= 0 {
		secs = minLeadInSeconds
	}
	oneLen := len(e.waveOne)
	if oneLen == 0 {
		return newErr(Format, "degenerate configuration: zero-length tone waveform")
	}
	reps := int(float64(e.cfg.FrameRate)/float64(oneLen)*secs + 0.5)
	if reps < 1 {
		reps = 1
	}
	for i := 0; i < reps; i++ {
		if err := e.writeWave(e.waveOne); err != nil {
			return err
		}
	}
	return nil
}

// WriteByte encodes and writes a single framed byte: a start bit, the
// 8 data bits LSB first, an optional parity bit, and two stop bits.
func (e *WaveformEncoder) WriteByte(b byte) error {
	if err := e.writeWave(e.waveZero); err != nil {
		return err
	}

	var ones int
	for _, mask := range dataBitMasks {
		wave := e.waveZero
		if b&mask != 0 {
			wave = e.waveOne
			ones++
		}
		if err := e.writeWave(wave); err != nil {
			return err
		}
	}

	if e.cfg.Parity != ParityNone {
		want := 0
		if e.cfg.Parity == ParityOdd {
			want = 1
		}
		parityBit := ((want-ones)%2 + 2) % 2

		wave := e.waveZero
		if parityBit == 1 {
			wave = e.waveOne
		}
		if err := e.writeWave(wave); err != nil {
			return err
		}
	}

	for i := 0; i < 2; i++ {
		if err := e.writeWave(e.waveOne); err != nil {
			return err
		}
	}
	return nil
}

// WriteBytes encodes and writes each byte of data in sequence.
func (e *WaveformEncoder) WriteBytes(data []byte) error {
	for _, b := range data {
		if err := e.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}

// writeWave writes one PCM frame per entry of w, using the encoder's
// precomputed high/low frame patterns.
func (e *WaveformEncoder) writeWave(w []bool) error {
	for _, hi := range w {
		frame := e.lowFrame
		if hi {
			frame = e.highFrame
		}
		if _, err := e.sink.Write(frame); err != nil {
			return wrapErr(Sink, "sample sink write failed", err)
		}
	}
	return nil
}
