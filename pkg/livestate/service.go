// Package livestate owns the in-memory device pool: current electrical
// readings, on/off status and cumulative runtime per slot.
package livestate

import (
	"errors"
	"fmt"
	"time"

	"github.com/AbidHayat/tubewell-project/pkg/types"
)

var ErrInvalidSlot = errors.New("livestate: slot index out of range")

// Pool is a fixed-size set of device slots created at startup.
// Slots are never destroyed during the process lifetime.
type Pool struct {
	slots []*deviceSlot
	now   func() time.Time
}

func NewPool(size int) *Pool {
	p := &Pool{
		slots: make([]*deviceSlot, size),
		now:   time.Now,
	}
	for i := range p.slots {
		p.slots[i] = &deviceSlot{name: fmt.Sprintf("Tubewell %d", i+1)}
	}
	return p
}

func (p *Pool) Size() int {
	return len(p.slots)
}

func (p *Pool) slot(i int) (*deviceSlot, error) {
	if i < 0 || i >= len(p.slots) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlot, i)
	}
	return p.slots[i], nil
}

// Apply overwrites the slot's readings with the record's values and
// marks the device on. Data arrival is the only path besides Toggle
// that turns a device on; a fresh session is opened if it was off so
// session start tracks status.
func (p *Pool) Apply(slot int, rec *types.Record) error {
	s, err := p.slot(slot)
	if err != nil {
		return err
	}
	now := p.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.status {
		s.status = true
		s.sessionStart = now
		s.events = append(s.events, types.SwitchEvent{
			Timestamp: now.Unix(),
			Action:    types.ActionOn,
		})
	}
	s.voltage = rec.VoltageV
	s.current = rec.CurrentA
	s.activePower = rec.ActivePowerKW
	s.reactivePower = rec.ReactivePowerKW
	s.powerFactor = rec.PowerFactor
	s.frequency = rec.FrequencyHz
	return nil
}

// Toggle flips the slot's status and returns the new one. Turning off
// folds the elapsed session into the total runtime and records an OFF
// event carrying the session length; turning on opens a new session.
func (p *Pool) Toggle(slot int) (bool, error) {
	s, err := p.slot(slot)
	if err != nil {
		return false, err
	}
	now := p.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status {
		var sessionSecs int64
		if !s.sessionStart.IsZero() {
			sessionSecs = int64(now.Sub(s.sessionStart).Seconds())
		}
		if sessionSecs < 0 {
			sessionSecs = 0
		}
		s.totalRuntime += sessionSecs
		s.status = false
		s.sessionStart = time.Time{}
		s.events = append(s.events, types.SwitchEvent{
			Timestamp:   now.Unix(),
			Action:      types.ActionOff,
			RuntimeSecs: sessionSecs,
		})
		return false, nil
	}

	s.status = true
	s.sessionStart = now
	s.events = append(s.events, types.SwitchEvent{
		Timestamp: now.Unix(),
		Action:    types.ActionOn,
	})
	return true, nil
}

// Status reports whether the slot is currently on.
func (p *Pool) Status(slot int) (bool, error) {
	s, err := p.slot(slot)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, nil
}

// CurrentRuntime returns the total runtime in seconds, including the
// elapsed part of the running session while on. Never goes backward.
func (p *Pool) CurrentRuntime(slot int) (int64, error) {
	s, err := p.slot(slot)
	if err != nil {
		return 0, err
	}
	now := p.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runtimeLocked(now), nil
}

func (s *deviceSlot) runtimeLocked(now time.Time) int64 {
	total := s.totalRuntime
	if s.status && !s.sessionStart.IsZero() {
		if live := int64(now.Sub(s.sessionStart).Seconds()); live > 0 {
			total += live
		}
	}
	return total
}

// Events returns a copy of the slot's switch event log, oldest first.
func (p *Pool) Events(slot int) ([]types.SwitchEvent, error) {
	s, err := p.slot(slot)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.SwitchEvent(nil), s.events...), nil
}

// Snapshot copies the slot's state. The returned value shares nothing
// with the pool.
func (p *Pool) Snapshot(slot int) (*types.DeviceSnapshot, error) {
	s, err := p.slot(slot)
	if err != nil {
		return nil, err
	}
	now := p.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &types.DeviceSnapshot{
		ID:               slot,
		Name:             s.name,
		Status:           s.status,
		VoltageV:         s.voltage,
		CurrentA:         s.current,
		ActivePowerKW:    s.activePower,
		ReactivePowerKW:  s.reactivePower,
		PowerFactor:      s.powerFactor,
		FrequencyHz:      s.frequency,
		TotalRuntimeSecs: s.runtimeLocked(now),
		Events:           append([]types.SwitchEvent(nil), s.events...),
	}
	return snap, nil
}
