/*
NAME
  kcsencode - encodes raw bytes as a Kansas City Standard audio stream.

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

// Package kcsencode is a command line client that encodes bytes, read
// from stdin or a file, as a Kansas City Standard audio stream written
// to a WAV file or played live through aplay.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/kcs"
	kcswav "github.com/ausocean/kcs/codec/wav"
	kcsaplay "github.com/ausocean/kcs/device/aplay"
	kcsfile "github.com/ausocean/kcs/device/file"
	"github.com/ausocean/kcs/internal/profile"
	"github.com/ausocean/utils/logging"
)

// Logging configuration, as in cmd/speaker/main.go.
const (
	logPath      = "/var/log/kcs/kcsencode.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
)

// defaultLeadInSeconds is the duration of tone written ahead of the
// framed data when -leadin is left at its zero value.
const defaultLeadInSeconds = 3.0

func main() {
	var (
		in       = flag.String("in", "", "file of bytes to encode (default: stdin)")
		out      = flag.String("out", "", "WAV file to write (required unless -device is set)")
		device   = flag.String("device", "", "live playback device to encode to: aplay")
		profPath = flag.String("profile", "", "YAML file of Config defaults; flags below override it")
		rate     = flag.Uint("rate", 0, "frame rate in Hz")
		width    = flag.Uint("width", 0, "sample width in bits")
		channels = flag.Uint("channels", 0, "channel count")
		baseFreq = flag.Uint("basefreq", 0, "KCS base tone in Hz")
		parity   = flag.String("parity", "", "parity scheme: none, even, odd")
		leadIn   = flag.Float64("leadin", 0, "lead-in duration in seconds (default: 3)")
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
	cfg, _ = cfg.Validate()

	if *out == "" && *device == "" {
		log.Fatal("one of -out or -device is required")
	}

	r := os.Stdin
	if *in != "" {
		r, err = os.Open(*in)
		if err != nil {
			log.Fatal("could not open input file", "error", err)
		}
		defer r.Close()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		log.Fatal("could not read input", "error", err)
	}

	var sink kcs.SampleSink
	switch {
	case *device == "aplay":
		s, err := kcsaplay.New(log, cfg.FrameRate, cfg.Channels, cfg.SampleWidthBits)
		if err != nil {
			log.Fatal("could not start aplay", "error", err)
		}
		sink = s
	case *device != "":
		log.Fatal(fmt.Sprintf("unknown device %q", *device))
	default:
		md := kcswav.Metadata{
			AudioFormat: kcswav.PCMFormat,
			Channels:    int(cfg.Channels),
			SampleRate:  int(cfg.FrameRate),
			BitDepth:    int(cfg.SampleWidthBits),
		}
		s, err := kcsfile.Create(*out, md, log)
		if err != nil {
			log.Fatal("could not create wav file", "error", err)
		}
		sink = s
	}

	session := kcs.NewEncodeSession(cfg, sink)
	defer session.Close()

	leadInSecs := *leadIn
	if leadInSecs == 0 {
		leadInSecs = defaultLeadInSeconds
	}
	leadInDur := time.Duration(leadInSecs * float64(time.Second))
	if err := session.WriteLeadIn(leadInDur); err != nil {
		log.Fatal("encode ended with error", "error", err)
	}
	if err := session.WriteBytes(data); err != nil {
		log.Fatal("encode ended with error", "error", err)
	}
	log.Info("encode complete", "bytes", len(data))
}
