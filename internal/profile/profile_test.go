/*
NAME
  profile_test.go

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package profile

import (
	"path/filepath"
	"testing"

	"os"

	"github.com/ausocean/kcs"
)

func TestLoad(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want kcs.Config
	}{
		{
			name: "full",
			yaml: "rate: 9600\nwidth: 8\nchannels: 1\nbasefreq: 1200\nparity: even\n",
			want: kcs.Config{FrameRate: 9600, SampleWidthBits: 8, Channels: 1, BaseFreq: 1200, Parity: kcs.ParityEven},
		},
		{
			name: "partial",
			yaml: "rate: 48000\n",
			want: kcs.Config{FrameRate: 48000},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "profile.yaml")
			if err := os.WriteFile(path, []byte(c.yaml), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got != c.want {
				t.Errorf("Load() = %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestLoadEmptyPath(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != (kcs.Config{}) {
		t.Errorf("Load(\"\") = %+v, want zero Config", got)
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := kcs.Config{FrameRate: 48000, Parity: kcs.ParityNone}
	ApplyFlags(&cfg, 0, 16, 0, 0, "odd")

	if cfg.FrameRate != 48000 {
		t.Errorf("FrameRate overridden unexpectedly: %v", cfg.FrameRate)
	}
	if cfg.SampleWidthBits != 16 {
		t.Errorf("SampleWidthBits = %v, want 16", cfg.SampleWidthBits)
	}
	if cfg.Parity != kcs.ParityOdd {
		t.Errorf("Parity = %v, want odd", cfg.Parity)
	}
}
