// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import "fmt"

// Direction is the translation regime reported while the body is moving.
type Direction uint8

const (
	Horizontal Direction = iota
	Vertical
	Diagonal
)

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Diagonal:
		return "diagonal"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	switch d {
	case Horizontal, Vertical, Diagonal:
		return []byte(d.String()), nil
	}
	return nil, fmt.Errorf("invalid direction %d", uint8(d))
}

func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "horizontal":
		*d = Horizontal
	case "vertical":
		*d = Vertical
	case "diagonal":
		*d = Diagonal
	default:
		return fmt.Errorf("unknown direction %q", text)
	}
	return nil
}

// Label renders an optional direction, "none" when the body is stationary.
func Label(d Direction, ok bool) string {
	if !ok {
		return "none"
	}
	return d.String()
}
