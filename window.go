/*
NAME
  window.go

DESCRIPTION
  window.go implements a fixed-size ring buffer over a boolean stream
  that maintains its sum incrementally in O(1) per sample, used by the
  lead-in detector and frame decoder.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package kcs

// bitWindow is a fixed-length ring buffer of booleans with an
// incrementally maintained running sum. push evicts the oldest sample
// and returns it, so callers can react to the value leaving the
// window (e.g. the start-bit search in FrameDecoder).
type bitWindow struct {
	buf []bool
	off int // Index of the oldest sample.
	sum int
}

// newBitWindow returns a bitWindow of the given length, with every
// slot initialised to false.
func newBitWindow(n int) *bitWindow {
	return &bitWindow{buf: make([]bool, n)}
}

// len returns the window's fixed length.
func (w *bitWindow) len() int { return len(w.buf) }

// sumNow returns the current running sum (count of true samples).
func (w *bitWindow) sumNow() int { return w.sum }

// oldest returns the value about to be evicted by the next push.
func (w *bitWindow) oldest() bool { return w.buf[w.off] }

// push evicts the oldest sample, appends bit as the newest, updates
// the running sum in place, and returns the evicted value.
func (w *bitWindow) push(bit bool) (evicted bool) {
	evicted = w.buf[w.off]
	w.buf[w.off] = bit
	w.off = (w.off + 1) % len(w.buf)

	switch {
	case bit && !evicted:
		w.sum++
	case !bit && evicted:
		w.sum--
	}
	return evicted
}

// fill resets the window's contents and sum to reflect the given
// slice of the most recent samples, which must have length w.len().
// Used to re-synchronize the decoder's window after consuming extra
// samples for stop bits, per spec.md §9's running-sum correctness note.
func (w *bitWindow) fill(samples []bool) {
	if len(samples) != len(w.buf) {
		panic("kcs: fill requires exactly len(w.buf) samples")
	}
	copy(w.buf, samples)
	w.off = 0
	w.sum = 0
	for _, b := range w.buf {
		if b {
			w.sum++
		}
	}
}
