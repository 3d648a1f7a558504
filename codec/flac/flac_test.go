/*
NAME
  flac_test.go

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flac

import "testing"

func TestSeekBuffer(t *testing.T) {
	b := &seekBuffer{}

	if _, err := b.Write([]byte("hello")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got, want := string(b.buf), "hello"; got != want {
		t.Fatalf("buf = %q, want %q", got, want)
	}

	if _, err := b.Seek(-2, 2); err != nil { // io.SeekEnd
		t.Fatalf("Seek() error = %v", err)
	}
	if _, err := b.Write([]byte("p!")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got, want := string(b.buf), "help!"; got != want {
		t.Errorf("buf after seek+write = %q, want %q", got, want)
	}

	if _, err := b.Seek(-1, 0); err == nil { // io.SeekStart, negative result
		t.Error("Seek() to negative position: got nil error, want non-nil")
	}
}

func TestDecodeRejectsNonFlac(t *testing.T) {
	_, err := Decode([]byte("not a flac stream"))
	if err == nil {
		t.Error("Decode() on non-flac data: got nil error, want non-nil")
	}
}
