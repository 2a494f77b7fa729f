// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/inertial_motion/internal/motion"
)

// TypeMOTA is the proprietary sentence the acquisition board emits once per
// sample: $PMOTA,<x>,<y>,<z>*hh with the earth-frame linear acceleration
// in g.
const TypeMOTA = "MOTA"

// ErrNoSample is returned for lines that carry no acceleration sample
// (boot banners, other NMEA traffic).
var ErrNoSample = errors.New("line carries no acceleration sample")

// MOTA is a parsed $PMOTA sentence.
type MOTA struct {
	nmea.BaseSentence
	Accel motion.Vector
}

func init() {
	if err := nmea.RegisterParser(TypeMOTA, parseMOTA); err != nil {
		panic(fmt.Sprintf("telemetry: register %s parser: %v", TypeMOTA, err))
	}
}

func parseMOTA(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	p.AssertType(TypeMOTA)
	m := MOTA{
		BaseSentence: s,
		Accel: motion.Vector{
			X: p.Float64(0, "x"),
			Y: p.Float64(1, "y"),
			Z: p.Float64(2, "z"),
		},
	}
	return m, p.Err()
}

// FormatMOTA renders v as a checksummed $PMOTA sentence.
func FormatMOTA(v motion.Vector) string {
	body := fmt.Sprintf("P%s,%.5f,%.5f,%.5f", TypeMOTA, v.X, v.Y, v.Z)
	return "$" + body + "*" + nmea.Checksum(body)
}

// statusLine matches the human-readable report line printed by the device
// firmware, e.g. "... ae_x:+0.012 ae.y:-0.003 ae.z:+0.998".
var statusLine = regexp.MustCompile(`ae[._]x:\s*([+-]?[0-9]*\.?[0-9]+)\s+ae[._]y:\s*([+-]?[0-9]*\.?[0-9]+)\s+ae[._]z:\s*([+-]?[0-9]*\.?[0-9]+)`)

// ParseLine extracts one earth-frame acceleration sample from a line of
// serial output, either a $PMOTA sentence or a firmware status line. Lines
// without a sample return ErrNoSample.
func ParseLine(line string) (motion.Vector, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return motion.Vector{}, ErrNoSample
	}

	if strings.HasPrefix(line, "$") {
		s, err := nmea.Parse(line)
		if err != nil {
			return motion.Vector{}, fmt.Errorf("nmea: %w", err)
		}
		m, ok := s.(MOTA)
		if !ok {
			return motion.Vector{}, ErrNoSample
		}
		return m.Accel, nil
	}

	match := statusLine.FindStringSubmatch(line)
	if match == nil {
		return motion.Vector{}, ErrNoSample
	}
	var v [3]float64
	for i := range v {
		f, err := strconv.ParseFloat(match[i+1], 64)
		if err != nil {
			return motion.Vector{}, fmt.Errorf("status line field %d: %w", i, err)
		}
		v[i] = f
	}
	return motion.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
}
