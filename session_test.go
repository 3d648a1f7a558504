/*
NAME
  session_test.go

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
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSink adapts a bytes.Buffer to SampleSink for tests.
type memSink struct{ *bytes.Buffer }

func (memSink) Close() error { return nil }

func newTestConfig(parity Parity) Config {
	cfg, _ := Config{Parity: parity}.Validate()
	return cfg
}

func encodeForTest(t *testing.T, cfg Config, leadIn time.Duration, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := NewEncodeSession(cfg, memSink{&buf})
	if leadIn == 0 {
		leadIn = time.Duration(minLeadInSeconds * float64(time.Second))
	}
	require.NoError(t, enc.WriteLeadIn(leadIn))
	require.NoError(t, enc.WriteBytes(data))
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func decodeForTest(t *testing.T, cfg Config, wav []byte) ([]byte, error) {
	t.Helper()
	dec := NewDecodeSession(cfg, NewSampleSource(bytes.NewReader(wav)))
	defer dec.Close()

	ok, err := dec.WaitForLeadIn(context.Background())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(NoLeadIn, "no lead-in tone detected before end of source")
	}

	it := dec.Decode(context.Background())
	var out []byte
	for {
		b, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, b)
	}
	return out, it.Err()
}

func TestCodecSessionRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		parity Parity
		data   []byte
	}{
		{name: "empty, no parity", parity: ParityNone, data: nil},
		{name: "ABC, no parity", parity: ParityNone, data: []byte("ABC")},
		{name: "single zero byte, even parity", parity: ParityEven, data: []byte{0x00}},
		{name: "single max byte, odd parity", parity: ParityOdd, data: []byte{0xff}},
		{name: "0xAA, odd parity", parity: ParityOdd, data: []byte{0xaa}},
		{name: "mixed sequence, even parity", parity: ParityEven, data: []byte{0x0f, 0x55, 0xaa, 0x01, 0xfe}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(tt.parity)
			wav := encodeForTest(t, cfg, 0, tt.data)

			got, err := decodeForTest(t, cfg, wav)
			require.NoError(t, err)
			assert.Equal(t, tt.data, got)
		})
	}
}

func TestCodecSessionDecodeNoLeadIn(t *testing.T) {
	cfg := newTestConfig(ParityNone)

	silence := make([]byte, cfg.strideBytes()*int(cfg.FrameRate)) // 1s of zero frames.
	_, err := decodeForTest(t, cfg, silence)
	require.Error(t, err)
	assert.True(t, IsKind(err, NoLeadIn))
}

func TestCodecSessionDecodeParityMismatch(t *testing.T) {
	cfg := newTestConfig(ParityOdd)
	wav := encodeForTest(t, cfg, 0, []byte{0x0f})

	// Flip the configured parity sense so the transmitted parity bit
	// disagrees with what the decoder now expects.
	flipped := newTestConfig(ParityEven)
	_, err := decodeForTest(t, flipped, wav)
	require.Error(t, err)
	assert.True(t, IsKind(err, Parity))
}

func TestCodecSessionDecodeTruncatedMidByte(t *testing.T) {
	cfg := newTestConfig(ParityNone)

	var buf bytes.Buffer
	enc := NewEncodeSession(cfg, memSink{&buf})
	require.NoError(t, enc.WriteLeadIn(time.Duration(minLeadInSeconds*float64(time.Second))))
	leadInLen := buf.Len()
	require.NoError(t, enc.WriteBytes([]byte{0xaa}))
	require.NoError(t, enc.Close())
	full := buf.Bytes()

	// Cut half-way through the byte's frame, landing squarely inside
	// its data bits, well before any stop-bit ambiguity.
	truncated := full[:leadInLen+(len(full)-leadInLen)/2]

	_, err := decodeForTest(t, cfg, truncated)
	require.Error(t, err)
	assert.True(t, IsKind(err, Format))
}

func TestCodecSessionDecodeCancel(t *testing.T) {
	cfg := newTestConfig(ParityNone)
	wav := encodeForTest(t, cfg, 0, bytes.Repeat([]byte("stop me"), 64))

	dec := NewDecodeSession(cfg, NewSampleSource(bytes.NewReader(wav)))
	defer dec.Close()

	ok, err := dec.WaitForLeadIn(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	it := dec.Decode(ctx)

	// One byte to confirm decoding is actually under way, then cancel.
	_, ok = it.Next()
	require.True(t, ok)
	cancel()

	_, ok = it.Next()
	assert.False(t, ok)
	require.Error(t, it.Err())
	assert.True(t, IsKind(it.Err(), Cancelled))
}

func TestCodecSessionClose(t *testing.T) {
	cfg := newTestConfig(ParityNone)
	wav := encodeForTest(t, cfg, 0, []byte("close me"))

	dec := NewDecodeSession(cfg, NewSampleSource(bytes.NewReader(wav)))
	require.NoError(t, dec.Close())
	// Close is idempotent.
	require.NoError(t, dec.Close())

	_, err := dec.WaitForLeadIn(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, Format))
}
