/*
NAME
  sink.go

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

import "io"

// SampleSink is the collaborator that a WaveformEncoder writes raw PCM
// frames to, interleaved by channel, little-endian sample byte order -
// the write-side counterpart of SampleSource.
type SampleSink interface {
	io.Writer
	io.Closer
}
