/*
NAME
  config_test.go

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package kcs

import "testing"

func TestConfigValidateDefaults(t *testing.T) {
	tests := []struct {
		name    string
		in      Config
		wantErr bool
	}{
		{name: "zero value", in: Config{}, wantErr: true},
		{name: "fully specified", in: Config{FrameRate: 48000, SampleWidthBits: 8, Channels: 1, BaseFreq: 2400, Gain: 1}, wantErr: false},
		{name: "violates Nyquist margin", in: Config{FrameRate: 4000, SampleWidthBits: 8, Channels: 1, BaseFreq: 2400, Gain: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.FrameRate == 0 || got.SampleWidthBits == 0 || got.Channels == 0 || got.BaseFreq == 0 {
				t.Errorf("Validate() returned a zero-valued field: %+v", got)
			}
			if got.Logger == nil {
				t.Errorf("Validate() left Logger nil")
			}
		})
	}
}

func TestConfigFramesPerBit(t *testing.T) {
	cfg := Config{FrameRate: 48000, BaseFreq: 2400}
	if got, want := cfg.FramesPerBit(), 160; got != want {
		t.Errorf("FramesPerBit() = %d, want %d", got, want)
	}
}

func TestConfigFramesPerHalfWave(t *testing.T) {
	cfg := Config{FrameRate: 48000, BaseFreq: 2400}
	if got, want := cfg.FramesPerHalfWave(), 10; got != want {
		t.Errorf("FramesPerHalfWave() = %d, want %d", got, want)
	}
}

func TestConfigBitThreshold(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{name: "reference rate", cfg: Config{FrameRate: 48000, BaseFreq: 2400}, want: 12},
		{name: "half rate halves threshold", cfg: Config{FrameRate: 24000, BaseFreq: 2400}, want: 6},
		{name: "never below 1", cfg: Config{FrameRate: 1, BaseFreq: 48000}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.BitThreshold(); got != tt.want {
				t.Errorf("BitThreshold() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConfigStrideAndOffset(t *testing.T) {
	cfg := Config{SampleWidthBits: 16, Channels: 2}
	if got, want := cfg.sampleWidthBytes(), 2; got != want {
		t.Errorf("sampleWidthBytes() = %d, want %d", got, want)
	}
	if got, want := cfg.strideBytes(), 4; got != want {
		t.Errorf("strideBytes() = %d, want %d", got, want)
	}
	if got, want := cfg.msbOffset(), 1; got != want {
		t.Errorf("msbOffset() = %d, want %d", got, want)
	}
}
