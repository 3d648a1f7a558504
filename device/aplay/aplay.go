/*
NAME
  aplay.go

AUTHOR
  Alan Noble <alan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package aplay provides a kcs.SampleSink that plays raw PCM samples
// live through the system's aplay command, for monitoring an
// in-progress encode or decoding straight to a speaker.
package aplay

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/ausocean/utils/logging"
)

const audioCmd = "aplay"

// Sink is a kcs.SampleSink that pipes written PCM samples to a live
// aplay child process.
type Sink struct {
	l   logging.Logger
	mu  sync.Mutex
	cmd *exec.Cmd
	in  io.WriteCloser
	err bytes.Buffer
}

// CheckInstalled reports whether the aplay executable is on PATH,
// logging its resolved location when found.
func CheckInstalled(l logging.Logger) error {
	path, err := exec.LookPath(audioCmd)
	if err != nil {
		return fmt.Errorf("aplay: %s not found: %w", audioCmd, err)
	}
	l.Debug("found aplay", "path", path)
	return nil
}

// New starts aplay configured for raw PCM audio matching rate,
// channels and sampleWidthBits, and returns a Sink that writes to its
// stdin. The caller must Close the Sink to flush and reap the child
// process.
func New(l logging.Logger, rate, channels, sampleWidthBits uint) (*Sink, error) {
	var format string
	switch sampleWidthBits {
	case 8:
		format = "U8"
	case 16:
		format = "S16_LE"
	case 32:
		format = "S32_LE"
	default:
		return nil, fmt.Errorf("aplay: unsupported sample width %d bits", sampleWidthBits)
	}

	cmd := exec.Command(audioCmd,
		"-q",
		"-t", "raw",
		"-f", format,
		"-c", fmt.Sprintf("%d", channels),
		"-r", fmt.Sprintf("%d", rate),
	)

	s := &Sink{l: l, cmd: cmd}
	cmd.Stderr = &s.err

	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("aplay: could not pipe stdin: %w", err)
	}
	s.in = in

	l.Debug("starting aplay", "rate", rate, "channels", channels, "format", format)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("aplay: could not start: %w", err)
	}
	return s, nil
}

// Write implements io.Writer, sending p to aplay's stdin.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.in == nil {
		return 0, fmt.Errorf("aplay: sink closed")
	}
	return s.in.Write(p)
}

// Close closes aplay's stdin, waits for playback to drain, and reaps
// the child process.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.in == nil {
		return nil
	}

	closeErr := s.in.Close()
	s.in = nil

	waitErr := s.cmd.Wait()
	if waitErr != nil {
		s.l.Error("aplay exited with error", "error", waitErr, "stderr", s.err.String())
		return fmt.Errorf("aplay: %w", waitErr)
	}
	if s.err.Len() != 0 {
		s.l.Warning("aplay stderr output", "stderr", s.err.String())
	}
	return closeErr
}
