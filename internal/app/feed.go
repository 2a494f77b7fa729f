// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/relabs-tech/inertial_motion/internal/motion"
	"github.com/relabs-tech/inertial_motion/internal/orientation"
	"github.com/relabs-tech/inertial_motion/internal/sensors"
	"github.com/relabs-tech/inertial_motion/internal/telemetry"
)

// sample is one earth-frame acceleration (g) with the heading it was
// measured at.
type sample struct {
	Time    time.Time
	Accel   motion.Vector
	Heading float64
}

// feed yields samples until it fails. io.EOF ends a finite feed.
type feed interface {
	Next(ctx context.Context) (sample, error)
}

// lineFeed reads acceleration samples from the serial output of the
// acquisition board. Lines without a sample are skipped; malformed
// sentences are logged and counted.
type lineFeed struct {
	r        *bufio.Reader
	now      func() time.Time
	rejected int
}

func newLineFeed(r io.Reader) *lineFeed {
	return &lineFeed{r: bufio.NewReader(r), now: time.Now}
}

// Next blocks on the underlying reader; closing it is the way to unblock.
func (f *lineFeed) Next(context.Context) (sample, error) {
	for {
		line, err := f.r.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			v, perr := telemetry.ParseLine(line)
			switch {
			case perr == nil:
				return sample{Time: f.now(), Accel: v}, nil
			case errors.Is(perr, telemetry.ErrNoSample):
			default:
				f.rejected++
				log.Printf("serial: %v (line: %q)", perr, strings.TrimSpace(line))
			}
		}
		if err != nil {
			return sample{}, err
		}
	}
}

// imuFeed samples an IMU source on every tick and fuses it into an
// earth-frame acceleration.
type imuFeed struct {
	src     sensors.Source
	tracker *orientation.Tracker
	ticks   <-chan time.Time

	// status, when set, is called after every fused sample.
	status func(t time.Time, tr *orientation.Tracker)
}

func (f *imuFeed) Next(ctx context.Context) (sample, error) {
	for {
		var t time.Time
		select {
		case <-ctx.Done():
			return sample{}, ctx.Err()
		case t = <-f.ticks:
		}

		r, err := f.src.Read()
		if err != nil {
			log.Printf("error reading IMU: %v", err)
			continue
		}
		pose, accel := f.tracker.Update(t, r.Accel, r.Gyro)
		if f.status != nil {
			f.status(t, f.tracker)
		}
		return sample{Time: t, Accel: accel, Heading: pose.Yaw}, nil
	}
}

// reporter runs samples through the analysis pipeline and decides which
// resulting events are worth publishing.
type reporter struct {
	pipe   *motion.Pipeline
	source string
	every  time.Duration

	last     telemetry.Event
	lastSent time.Time
	started  bool
}

func newReporter(p motion.Params, source string, every time.Duration) (*reporter, error) {
	pipe, err := motion.New(p)
	if err != nil {
		return nil, fmt.Errorf("motion pipeline: %w", err)
	}
	return &reporter{pipe: pipe, source: source, every: every}, nil
}

// observe feeds s through the pipeline. The event is due on the first
// sample, on every direction change and once per report interval.
func (r *reporter) observe(s sample) (ev telemetry.Event, changed, due bool) {
	r.pipe.Add(s.Accel)
	ev = telemetry.NewEvent(s.Time, r.source, r.pipe.Last(), s.Heading)

	changed = r.started && ev.Changed(r.last)
	due = !r.started || changed || s.Time.Sub(r.lastSent) >= r.every
	r.last = ev
	if due {
		r.started = true
		r.lastSent = s.Time
	}
	return ev, changed, due
}

// runAnalysis drains f through r and hands every due event to emit. It
// returns nil once the feed ends or ctx is cancelled.
func runAnalysis(ctx context.Context, f feed, r *reporter, emit func(ev telemetry.Event, changed bool)) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		s, err := f.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if ev, changed, due := r.observe(s); due {
			emit(ev, changed)
		}
	}
}
