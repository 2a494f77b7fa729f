// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/inertial_motion/internal/config"
	"github.com/relabs-tech/inertial_motion/internal/orientation"
	"github.com/relabs-tech/inertial_motion/internal/sensors"
	"github.com/relabs-tech/inertial_motion/internal/telemetry"
)

// RunMockConsole runs the synthetic motion profile through the whole
// analysis chain and prints events, without hardware or a broker.
func RunMockConsole() error {
	cfg := config.Get()
	src := sensors.NewMockSource(cfg.IMUSampleInterval)

	rep, err := newReporter(cfg.MotionParams(), "mock", millis(cfg.ReportInterval))
	if err != nil {
		return err
	}

	period := millis(cfg.IMUSampleInterval)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	f := &imuFeed{
		src:     src,
		tracker: orientation.NewTracker(period, cfg.FusionGain, cfg.VelocityLeak),
		ticks:   ticker.C,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAnalysis(ctx, f, rep, func(ev telemetry.Event, changed bool) {
		phase := src.PhaseAt(src.Elapsed())
		marker := ""
		if changed {
			marker = "  <-"
		}
		fmt.Printf("%s  (profile: %s)%s\n", formatEvent(ev), phase.Name, marker)
	})
}
