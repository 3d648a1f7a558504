/*
NAME
  errors.go

DESCRIPTION
  errors.go defines the KCSError taxonomy used across the kcs package.

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
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a KCSError.
type Kind int

const (
	// NoLeadIn indicates the lead-in detector reached EOF without
	// accepting a steady base-frequency tone.
	NoLeadIn Kind = iota

	// Parity indicates a framed byte's parity bit did not match the
	// observed one-count of its data bits.
	Parity

	// Source indicates an error from the underlying sample source.
	Source

	// Sink indicates an error from the underlying sample sink.
	Sink

	// UnsupportedFormat indicates an audio file with an unreadable
	// header or zero channels.
	UnsupportedFormat

	// Cancelled indicates the caller cancelled a streaming operation.
	Cancelled

	// Format indicates a start bit was detected but the stream ended
	// before a full byte could be assembled. It is also returned for a
	// call on a closed CodecSession or on one lacking the needed
	// SampleSource/SampleSink, for Decode used before a successful
	// WaitForLeadIn, and for a degenerate encoder configuration.
	Format
)

// String returns a human-readable name for k.
func (k Kind) String() string {
	switch k {
	case NoLeadIn:
		return "NoLeadIn"
	case Parity:
		return "Parity"
	case Source:
		return "Source"
	case Sink:
		return "Sink"
	case UnsupportedFormat:
		return "UnsupportedFormat"
	case Cancelled:
		return "Cancelled"
	case Format:
		return "Format"
	default:
		return "Unknown"
	}
}

// KCSError is the single named error category used by the kcs package,
// as required by spec.md §6. Errors from a SampleSource or SampleSink
// are returned as a KCSError of kind Source or Sink that wraps the
// original error, which stays reachable through Unwrap.
type KCSError struct {
	Kind Kind
	Msg  string
	Err  error // Optional wrapped cause.
}

// Error implements the error interface.
func (e *KCSError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("kcs: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("kcs: %s: %s", e.Kind, e.Msg)
}

// Unwrap allows errors.Is/errors.As to see through to the cause.
func (e *KCSError) Unwrap() error { return e.Err }

// newErr constructs a KCSError of the given kind.
func newErr(k Kind, msg string) error {
	return &KCSError{Kind: k, Msg: msg}
}

// wrapErr constructs a KCSError of the given kind, wrapping cause.
func wrapErr(k Kind, msg string, cause error) error {
	return &KCSError{Kind: k, Msg: msg, Err: errors.WithStack(cause)}
}

// IsKind reports whether err is a *KCSError of kind k.
func IsKind(err error, k Kind) bool {
	kerr, ok := err.(*KCSError)
	return ok && kerr.Kind == k
}
