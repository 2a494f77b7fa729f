package telemetry

import (
	"time"

	"github.com/relabs-tech/inertial_motion/internal/motion"
)

// Event is the JSON payload published for every report tick and every
// direction change.
type Event struct {
	Time      time.Time `json:"time"`
	Source    string    `json:"source,omitempty"`
	Direction string    `json:"direction"` // "horizontal", "vertical", "diagonal" or "none"
	Moving    bool      `json:"moving"`
	EnergyH   float64   `json:"energy_h"` // g
	EnergyV   float64   `json:"energy_v"` // g
	Heading   float64   `json:"heading"`  // degrees
}

// NewEvent builds an Event from the last pipeline trace.
func NewEvent(ts time.Time, source string, tr motion.Trace, heading float64) Event {
	return Event{
		Time:      ts,
		Source:    source,
		Direction: motion.Label(tr.Direction, tr.Moving),
		Moving:    tr.Moving,
		EnergyH:   tr.EnergyH,
		EnergyV:   tr.EnergyV,
		Heading:   heading,
	}
}

// Changed reports whether the classification differs from prev.
func (e Event) Changed(prev Event) bool {
	return e.Direction != prev.Direction
}
