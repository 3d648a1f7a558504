/*
NAME
  leadin.go

DESCRIPTION
  leadin.go implements the LeadInDetector: scanning a sign-change
  stream for a steady base-frequency tone lasting at least half a
  second.

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

// leadInTolerance is the acceptable distance between a half-second
// window's sign-change count and the expected base_freq count,
// absorbing tape wow/flutter and digitization jitter.
const leadInTolerance = 100

// leadInFastForwardDivisor determines the fast-forward step (1/5
// second) taken after a failed acceptance test, per spec.md §4.2.
const leadInFastForwardDivisor = 5

// LeadInDetector advances a SignChangeExtractor until it observes a
// steady tone at Config.BaseFreq for a sustained half-second interval.
type LeadInDetector struct {
	src *SignChangeExtractor
	cfg Config
}

// NewLeadInDetector returns a LeadInDetector reading sign-change bits
// from src under cfg.
func NewLeadInDetector(src *SignChangeExtractor, cfg Config) *LeadInDetector {
	return &LeadInDetector{src: src, cfg: cfg}
}

// Wait advances the underlying stream until a half-second window's
// sign-change count is within leadInTolerance of Config.BaseFreq. It
// returns true on acceptance, false if the stream ends first (a
// NoLeadIn condition the caller should report), or a non-nil error if
// the underlying SampleSource failed.
func (d *LeadInDetector) Wait() (bool, error) {
	halfSecond := int(d.cfg.FrameRate) / 2
	if halfSecond <= 0 {
		halfSecond = 1
	}
	w := newBitWindow(halfSecond)

	// Fill the window with the first half-second of sign-change bits.
	for i := 0; i < halfSecond; i++ {
		bit, ok := d.src.Next()
		if !ok {
			return false, d.src.Err()
		}
		w.push(bit)
	}

	fastForward := int(d.cfg.FrameRate) / leadInFastForwardDivisor
	if fastForward < 1 {
		fastForward = 1
	}

	for {
		if abs(w.sumNow()-int(d.cfg.BaseFreq)) < leadInTolerance {
			return true, nil
		}

		// Fast-forward by ~200ms rather than testing every sample.
		for i := 0; i < fastForward; i++ {
			bit, ok := d.src.Next()
			if !ok {
				return false, d.src.Err()
			}
			w.push(bit)
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
