// Package registry maps external controller identifiers to device slots.
package registry

import (
	"errors"
	"fmt"
)

var ErrUnregistered = errors.New("registry: unregistered device id")

// DeviceRegistry is a static mapping built at startup. Controllers
// identify themselves as "device-<n>" with n in [1, pool size].
type DeviceRegistry struct {
	slots map[string]int
}

func New(poolSize int) *DeviceRegistry {
	slots := make(map[string]int, poolSize)
	for i := 0; i < poolSize; i++ {
		slots[fmt.Sprintf("device-%d", i+1)] = i
	}
	return &DeviceRegistry{slots: slots}
}

// Resolve returns the slot index for an external id, or ErrUnregistered.
// Callers must not touch any device state on error.
func (r *DeviceRegistry) Resolve(externalID string) (int, error) {
	slot, ok := r.slots[externalID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnregistered, externalID)
	}
	return slot, nil
}

func (r *DeviceRegistry) Size() int {
	return len(r.slots)
}
