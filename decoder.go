/*
NAME
  decoder.go

DESCRIPTION
  decoder.go implements the FrameDecoder: extracting start-bit-aligned
  bytes, with optional parity checking, from a sign-change stream.

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

// startBitSumThreshold is the running-sum ceiling, within the current
// bit window, under which the window is considered to be sitting in a
// low-tone ("0") region and so eligible to begin a start-bit match.
const startBitSumThreshold = 9

// dataBitMasks are the 8 data bit masks, applied LSB first, per
// spec.md §4.3.
var dataBitMasks = [8]byte{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}

// FrameDecoder emits a lazy sequence of bytes decoded from a
// SignChangeExtractor, framed as: 1 start bit (0), 8 data bits (LSB
// first), an optional parity bit, and 2 stop bits (1).
type FrameDecoder struct {
	src *SignChangeExtractor
	cfg Config

	win       *bitWindow
	threshold int
	primed    bool

	err  error
	done bool
}

// NewFrameDecoder returns a FrameDecoder reading sign-change bits from
// src, which must already be positioned past lead-in (see
// LeadInDetector.Wait), under cfg.
func NewFrameDecoder(src *SignChangeExtractor, cfg Config) *FrameDecoder {
	return &FrameDecoder{
		src:       src,
		cfg:       cfg,
		win:       newBitWindow(cfg.FramesPerBit()),
		threshold: cfg.BitThreshold(),
	}
}

// Next searches for the next start bit and, on finding one, decodes
// and returns the following byte. ok is false at end of stream (either
// a clean EOF with no start bit pending, or a Format error because a
// start bit was found but the stream ended before a full byte could be
// assembled - see Err). A Parity error also ends the stream permanently.
func (d *FrameDecoder) Next() (b byte, ok bool) {
	if d.done || d.err != nil {
		return 0, false
	}

	if !d.findStartBit() {
		return 0, false
	}

	return d.readByte()
}

// Err returns the error, if any, that ended decoding: a KCSError of
// kind Parity or Format, or an underlying source error of kind Source.
// Err returns nil if the stream ended cleanly with no byte in progress.
func (d *FrameDecoder) Err() error { return d.err }

// findStartBit fills/advances the sliding window one sample at a time
// until the oldest sample currently in the window - the one that has
// sat there the longest and so marks the leading edge out of the
// preceding high-tone stop/lead-in region - is a sign-change, while the
// window's sum once the newest sample is folded in indicates a
// low-tone region, per spec.md §4.3.
func (d *FrameDecoder) findStartBit() bool {
	if !d.primed {
		for i := 0; i < d.win.len()-1; i++ {
			bit, ok := d.src.Next()
			if !ok {
				d.finish(d.src.Err())
				return false
			}
			d.win.push(bit)
		}
		d.primed = true
	}

	for {
		bit, ok := d.src.Next()
		if !ok {
			d.finish(d.src.Err())
			return false
		}
		d.win.push(bit)

		if d.win.oldest() && d.win.sumNow() <= startBitSumThreshold {
			return true
		}
	}
}

// readByte consumes the 8 data-bit windows (and, if configured, the
// parity window), verifies parity, and then consumes and
// re-synchronizes past the two stop bits.
func (d *FrameDecoder) readByte() (byte, bool) {
	fpb := d.win.len()

	var b byte
	var ones int
	for _, mask := range dataBitMasks {
		sum, ok := d.sumNextWindow(fpb)
		if !ok {
			d.finish(newErr(Format, "stream ended mid-byte"))
			return 0, false
		}
		if sum >= d.threshold {
			b |= mask
			ones++
		}
	}

	if d.cfg.Parity != ParityNone {
		sum, ok := d.sumNextWindow(fpb)
		if !ok {
			d.finish(newErr(Format, "stream ended before parity bit"))
			return 0, false
		}
		parityBit := 0
		if sum >= d.threshold {
			parityBit = 1
		}
		want := 0
		if d.cfg.Parity == ParityOdd {
			want = 1
		}
		if (ones+parityBit)%2 != want {
			d.finish(newErr(Parity, "parity mismatch"))
			return 0, false
		}
	}

	if !d.consumeStopBits(fpb) {
		return 0, false
	}

	return b, true
}

// consumeStopBits discards the two stop-bit windows (2*fpb samples of
// high tone) and then re-primes the sliding window with the following
// fpb-1 samples, so the next findStartBit call resumes with a
// correctly synchronized running sum, per spec.md §9's note that the
// window must be recomputed rather than incrementally patched across
// this gap.
func (d *FrameDecoder) consumeStopBits(fpb int) bool {
	for i := 0; i < 2*fpb; i++ {
		if _, ok := d.src.Next(); !ok {
			d.finish(d.src.Err())
			return false
		}
	}

	// tail[0] is a placeholder that fill() treats as the oldest sample,
	// evicted by the very first push of the next findStartBit call;
	// tail[1:] holds the fpb-1 real samples that prime the window.
	tail := make([]bool, fpb)
	for i := 1; i < fpb; i++ {
		bit, ok := d.src.Next()
		if !ok {
			// Both stop bits were read in full, so the byte is complete;
			// a clean end of stream here still returns it.
			d.finish(d.src.Err())
			return d.err == nil
		}
		tail[i] = bit
	}
	d.win.fill(tail)
	d.primed = true
	return true
}

// sumNextWindow consumes n fresh sign-change samples and returns their
// sum, used for classifying a single data/parity bit window.
func (d *FrameDecoder) sumNextWindow(n int) (int, bool) {
	sum := 0
	for i := 0; i < n; i++ {
		bit, ok := d.src.Next()
		if !ok {
			return 0, false
		}
		if bit {
			sum++
		}
	}
	return sum, true
}

func (d *FrameDecoder) finish(err error) {
	d.done = true
	if err != nil {
		d.err = err
	}
}
