/*
NAME
  alsa_linux_test.go

AUTHOR
  Trek Hopton <trek@ausocean.org>
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package alsa

import (
	"testing"
	"time"

	"github.com/ausocean/kcs"
	"github.com/ausocean/utils/logging"
)

func TestSourceOpenAndRead(t *testing.T) {
	cfg, _ := kcs.Config{FrameRate: 8000, Channels: 1, SampleWidthBits: 16}.Validate()

	s := New((*logging.TestLogger)(t), "")
	negotiated, err := s.Open(cfg)
	if err != nil {
		t.Skipf("no ALSA capture device available: %v", err)
	}
	defer s.Close()

	buf := make([]byte, negotiated.FrameRate/10)
	s.Read(buf) // Best effort; some test environments never produce data.
	time.Sleep(10 * time.Millisecond)
}
