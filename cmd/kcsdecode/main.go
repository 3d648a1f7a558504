/*
NAME
  kcsdecode - decodes a Kansas City Standard audio stream into raw bytes.

AUTHORS
  Alan Noble <alan@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package kcsdecode is a command line client that decodes a Kansas
// City Standard audio stream, read from a WAV file or a live ALSA
// capture device, into raw bytes written to stdout or a file.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/kcs"
	kcsalsa "github.com/ausocean/kcs/device/alsa"
	kcsfile "github.com/ausocean/kcs/device/file"
	"github.com/ausocean/kcs/internal/profile"
	"github.com/ausocean/utils/logging"
)

// Logging configuration, as in cmd/speaker/main.go.
const (
	logPath      = "/var/log/kcs/kcsdecode.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
)

func main() {
	var (
		in       = flag.String("in", "", "WAV file to decode (required unless -device is set)")
		out      = flag.String("out", "", "output file for decoded bytes (default: stdout)")
		device   = flag.String("device", "", "live capture device to decode from: alsa")
		title    = flag.String("title", "", "ALSA device title; empty selects the first capture device")
		profPath = flag.String("profile", "", "YAML file of Config defaults; flags below override it")
		rate     = flag.Uint("rate", 0, "frame rate in Hz")
		width    = flag.Uint("width", 0, "sample width in bits")
		channels = flag.Uint("channels", 0, "channel count")
		baseFreq = flag.Uint("basefreq", 0, "KCS base tone in Hz")
		parity   = flag.String("parity", "", "parity scheme: none, even, odd")
		resample = flag.Uint("resample", 0, "downsample a WAV input to this rate (Hz) before decoding")
		mono     = flag.Bool("mono", false, "downmix a stereo WAV input to mono (left channel) before decoding")
		bpLower  = flag.Float64("bandpass-lower", 0, "lower cutoff (Hz) of a band-pass filter applied to a 16-bit WAV input before decoding")
		bpUpper  = flag.Float64("bandpass-upper", 0, "upper cutoff (Hz) of a band-pass filter applied to a 16-bit WAV input before decoding")
		bpTaps   = flag.Int("bandpass-taps", 127, "FIR filter length for -bandpass-lower/-bandpass-upper")
		flacIn   = flag.Bool("flac", false, "-in names a FLAC file instead of a WAV file")
		verbose  = flag.Bool("verbose", false, "log at debug level")
	)
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	level := logging.Info
	if *verbose {
		level = logging.Debug
	}
	log := logging.New(level, io.MultiWriter(fileLog, os.Stderr), true)

	cfg, err := profile.Load(*profPath)
	if err != nil {
		log.Fatal("could not load profile", "error", err)
	}
	profile.ApplyFlags(&cfg, *rate, *width, *channels, *baseFreq, *parity)
	cfg.Logger = log

	if *in == "" && *device == "" {
		log.Fatal("one of -in or -device is required")
	}

	var src kcs.SampleSource
	switch {
	case *device == "alsa":
		a := kcsalsa.New(log, *title)
		negotiated, err := a.Open(cfg)
		if err != nil {
			log.Fatal("could not open alsa device", "error", err)
		}
		cfg = negotiated
		src = a
	case *device != "":
		log.Fatal(fmt.Sprintf("unknown device %q", *device))
	case *flacIn:
		f, err := kcsfile.OpenFLAC(*in, log)
		if err != nil {
			log.Fatal("could not open flac file", "error", err)
		}
		cfg.FrameRate = f.Format.FrameRate
		cfg.SampleWidthBits = f.Format.BitDepth
		cfg.Channels = f.Format.Channels
		src = f
	case *mono:
		f, err := kcsfile.OpenMono(*in, log)
		if err != nil {
			log.Fatal("could not open wav file", "error", err)
		}
		cfg.FrameRate = f.Format.FrameRate
		cfg.SampleWidthBits = f.Format.BitDepth
		cfg.Channels = f.Format.Channels
		src = f
	case *bpLower != 0 || *bpUpper != 0:
		f, err := kcsfile.OpenFiltered(*in, *bpLower, *bpUpper, *bpTaps, log)
		if err != nil {
			log.Fatal("could not open wav file", "error", err)
		}
		cfg.FrameRate = f.Format.FrameRate
		cfg.SampleWidthBits = f.Format.BitDepth
		cfg.Channels = f.Format.Channels
		src = f
	default:
		f, err := kcsfile.OpenResampled(*in, *resample, log)
		if err != nil {
			log.Fatal("could not open wav file", "error", err)
		}
		cfg.FrameRate = f.Format.FrameRate
		cfg.SampleWidthBits = f.Format.BitDepth
		cfg.Channels = f.Format.Channels
		src = f
	}

	w := os.Stdout
	if *out != "" {
		w, err = os.Create(*out)
		if err != nil {
			log.Fatal("could not create output file", "error", err)
		}
		defer w.Close()
	}

	session := kcs.NewDecodeSession(cfg, src)
	defer session.Close()

	ctx := context.Background()
	ok, err := session.WaitForLeadIn(ctx)
	if err != nil {
		log.Fatal("decode ended with error", "error", err)
	}
	if !ok {
		log.Fatal("decode ended with error", "error", "no lead-in tone detected")
	}

	bw := bufio.NewWriter(w)
	it := session.Decode(ctx)
	var n int
	for {
		b, ok := it.Next()
		if !ok {
			break
		}
		if werr := bw.WriteByte(b); werr != nil {
			log.Fatal("could not write decoded data", "error", werr)
		}
		n++
	}
	if err := bw.Flush(); err != nil {
		log.Fatal("could not flush decoded data", "error", err)
	}
	if err := it.Err(); err != nil {
		log.Fatal("decode ended with error", "error", err)
	}
	log.Info("decode complete", "bytes", n)
}
