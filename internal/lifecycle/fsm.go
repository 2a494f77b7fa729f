// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package lifecycle tracks the start-up and connection state of the
// producer processes.
package lifecycle

import (
	"errors"
	"fmt"
	"sync"
)

var ErrInvalidTransition = errors.New("invalid state transition")

type SensorStatus int

const (
	SensorBootup SensorStatus = iota
	SensorPeripheralSetup
	SensorSampling
)

func (s SensorStatus) String() string {
	switch s {
	case SensorBootup:
		return "bootup"
	case SensorPeripheralSetup:
		return "peripheral-setup"
	case SensorSampling:
		return "sampling"
	}
	return fmt.Sprintf("sensor-status(%d)", int(s))
}

// SensorFSM walks bootup -> peripheral setup -> sampling. It is owned by
// the acquisition loop and not safe for concurrent use.
type SensorFSM struct {
	state SensorStatus
}

func NewSensorFSM() *SensorFSM {
	return &SensorFSM{state: SensorBootup}
}

func (f *SensorFSM) Status() SensorStatus { return f.state }

func (f *SensorFSM) BootupComplete() error {
	return f.advance(SensorBootup, SensorPeripheralSetup)
}

func (f *SensorFSM) PeripheralsComplete() error {
	return f.advance(SensorPeripheralSetup, SensorSampling)
}

func (f *SensorFSM) advance(from, to SensorStatus) error {
	if f.state != from {
		return fmt.Errorf("%w: %s -> %s from %s", ErrInvalidTransition, from, to, f.state)
	}
	f.state = to
	return nil
}

type ConnectionStatus int

const (
	ConnBootup ConnectionStatus = iota
	ConnPeripheralSetup
	ConnConnecting
	ConnConnected
)

func (s ConnectionStatus) String() string {
	switch s {
	case ConnBootup:
		return "bootup"
	case ConnPeripheralSetup:
		return "peripheral-setup"
	case ConnConnecting:
		return "connecting"
	case ConnConnected:
		return "connected"
	}
	return fmt.Sprintf("connection-status(%d)", int(s))
}

// ConnectionFSM tracks the broker connection. Transitions are driven from
// MQTT client callbacks while other goroutines observe Status, so it is
// guarded by a mutex.
type ConnectionFSM struct {
	mu    sync.RWMutex
	state ConnectionStatus
}

func NewConnectionFSM() *ConnectionFSM {
	return &ConnectionFSM{state: ConnBootup}
}

func (f *ConnectionFSM) Status() ConnectionStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

func (f *ConnectionFSM) BootupComplete() error {
	return f.advance(ConnBootup, ConnPeripheralSetup)
}

func (f *ConnectionFSM) PeripheralsComplete() error {
	return f.advance(ConnPeripheralSetup, ConnConnecting)
}

func (f *ConnectionFSM) Connected() error {
	return f.advance(ConnConnecting, ConnConnected)
}

func (f *ConnectionFSM) Disconnected() error {
	return f.advance(ConnConnected, ConnConnecting)
}

func (f *ConnectionFSM) advance(from, to ConnectionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != from {
		return fmt.Errorf("%w: %s -> %s from %s", ErrInvalidTransition, from, to, f.state)
	}
	f.state = to
	return nil
}
