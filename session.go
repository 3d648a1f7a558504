/*
NAME
  session.go

DESCRIPTION
  session.go implements CodecSession, the facade combining lead-in
  detection, frame decoding, and waveform encoding behind a single
  lifecycle, mirroring revid.Revid's cfg/running/Logger/deterministic-
  teardown shape.

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

package kcs

import (
	"context"
	"sync"
	"time"
)

// CodecSession owns exactly one SampleSource (decode) or SampleSink
// (encode) for its lifetime and provides cancellable operations over
// it. Close releases the owned collaborator and is idempotent; callers
// reach it with defer immediately after construction.
type CodecSession struct {
	cfg Config

	mu     sync.Mutex
	closed bool

	src SampleSource
	sce *SignChangeExtractor
	lead *LeadInDetector
	dec  *FrameDecoder

	leadInDone bool
	leadInOK   bool

	sink SampleSink
	enc  *WaveformEncoder
}

// NewDecodeSession returns a CodecSession that owns src for decoding.
// Any defaulted Config fields are reported through the resulting
// cfg.Logger rather than failing construction, per Config.Validate.
func NewDecodeSession(cfg Config, src SampleSource) *CodecSession {
	cfg = validate(cfg)
	sce := NewSignChangeExtractor(src, cfg)
	return &CodecSession{
		cfg:  cfg,
		src:  src,
		sce:  sce,
		lead: NewLeadInDetector(sce, cfg),
	}
}

// NewEncodeSession returns a CodecSession that owns sink for encoding.
func NewEncodeSession(cfg Config, sink SampleSink) *CodecSession {
	cfg = validate(cfg)
	return &CodecSession{
		cfg:  cfg,
		sink: sink,
		enc:  NewWaveformEncoder(sink, cfg),
	}
}

func validate(cfg Config) Config {
	validated, errs := cfg.Validate()
	if errs != nil {
		validated.Logger.Warning("config required defaulting", "error", errs.Error())
	}
	return validated
}

// Config returns the session's validated configuration.
func (s *CodecSession) Config() Config { return s.cfg }

// Close releases the session's owned SampleSource or SampleSink. Close
// is idempotent; subsequent calls return nil.
func (s *CodecSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.src != nil {
		return s.src.Close()
	}
	if s.sink != nil {
		return s.sink.Close()
	}
	return nil
}

// WaitForLeadIn blocks until the owned SampleSource's lead-in tone is
// found, the source is exhausted, or ctx is cancelled. A cancellation
// closes the session to unblock the underlying read, mirroring
// spec.md §5's "cancellation observed when the caller closes the
// session" model; the same goroutine-plus-select shape codecutil.Noop
// uses to cancel its own streaming loop.
func (s *CodecSession) WaitForLeadIn(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, newErr(Format, "session is closed")
	}
	if s.lead == nil {
		s.mu.Unlock()
		return false, newErr(Format, "session does not own a SampleSource")
	}
	if s.leadInDone {
		ok := s.leadInOK
		s.mu.Unlock()
		if !ok {
			return false, newErr(NoLeadIn, "no lead-in tone detected before end of source")
		}
		return true, nil
	}
	lead := s.lead
	s.mu.Unlock()

	var ok bool
	var err error
	if !s.runCancelable(ctx, func() { ok, err = lead.Wait() }) {
		return false, wrapErr(Cancelled, "lead-in wait cancelled", ctx.Err())
	}

	s.mu.Lock()
	s.leadInDone = true
	s.leadInOK = ok
	s.mu.Unlock()

	if err != nil {
		return false, err
	}
	if !ok {
		return false, newErr(NoLeadIn, "no lead-in tone detected before end of source")
	}
	return true, nil
}

// Decode returns a pull iterator over the bytes framed in the owned
// SampleSource, ready to call once WaitForLeadIn has returned (true,
// nil). ctx cancels any Next call still blocked on the source.
func (s *CodecSession) Decode(ctx context.Context) *ByteIter {
	return &ByteIter{s: s, ctx: ctx}
}

// ByteIter is the pull iterator CodecSession.Decode returns: call Next
// until it reports ok false, then check Err to distinguish a clean end
// of stream from a Parity/Format/Source/Cancelled error.
type ByteIter struct {
	s    *CodecSession
	ctx  context.Context
	err  error
	done bool
}

// Next returns the next decoded byte, or ok false at end of stream, on
// error, or once ctx is cancelled.
func (it *ByteIter) Next() (b byte, ok bool) {
	if it.done {
		return 0, false
	}
	s := it.s

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		it.done = true
		return 0, false
	}
	if !s.leadInDone || !s.leadInOK {
		s.mu.Unlock()
		it.err = newErr(Format, "Decode called before a successful WaitForLeadIn")
		it.done = true
		return 0, false
	}
	if s.dec == nil {
		s.dec = NewFrameDecoder(s.sce, s.cfg)
	}
	dec := s.dec
	s.mu.Unlock()

	if !s.runCancelable(it.ctx, func() { b, ok = dec.Next() }) {
		it.err = wrapErr(Cancelled, "decode cancelled", it.ctx.Err())
		it.done = true
		return 0, false
	}
	if !ok {
		it.done = true
		it.err = dec.Err()
	}
	return b, ok
}

// Err returns the error, if any, that ended iteration. It returns nil
// if the stream ended cleanly.
func (it *ByteIter) Err() error { return it.err }

// WriteLeadIn writes d of lead-in tone to the owned SampleSink, ahead
// of any WriteBytes call.
func (s *CodecSession) WriteLeadIn(d time.Duration) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return newErr(Format, "session is closed")
	}
	enc := s.enc
	s.mu.Unlock()
	if enc == nil {
		return newErr(Format, "session does not own a SampleSink")
	}
	return enc.WriteLeadIn(d.Seconds())
}

// WriteBytes frames data and writes it to the owned SampleSink.
func (s *CodecSession) WriteBytes(data []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return newErr(Format, "session is closed")
	}
	enc := s.enc
	s.mu.Unlock()
	if enc == nil {
		return newErr(Format, "session does not own a SampleSink")
	}
	return enc.WriteBytes(data)
}

// runCancelable runs fn to completion in its own goroutine, returning
// true once fn returns. If ctx is cancelled first it closes the
// session - unblocking fn's underlying SampleSource/SampleSink call -
// and waits for fn to actually return before reporting false, so no
// goroutine outlives the call.
func (s *CodecSession) runCancelable(ctx context.Context, fn func()) bool {
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		s.Close()
		<-done
		return false
	}
}
