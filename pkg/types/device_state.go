package types

// SwitchEvent records one on/off transition of a device.
// RuntimeSecs carries the length of the just-ended session on OFF events.
type SwitchEvent struct {
	Timestamp   int64  `json:"timestamp"`
	Action      string `json:"action"`
	RuntimeSecs int64  `json:"runtime,omitempty"`
}

const (
	ActionOn  = "ON"
	ActionOff = "OFF"
)

// DeviceSnapshot is a point-in-time copy of one device slot.
type DeviceSnapshot struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Status bool   `json:"status"`

	VoltageV        PhaseValues `json:"voltage"`
	CurrentA        PhaseValues `json:"current"`
	ActivePowerKW   PhaseValues `json:"active_power"`
	ReactivePowerKW PhaseValues `json:"reactive_power"`
	PowerFactor     PhaseValues `json:"power_factor"`
	FrequencyHz     float64     `json:"frequency"`

	// TotalRuntimeSecs includes the in-progress session while on.
	TotalRuntimeSecs int64         `json:"total_runtime"`
	Events           []SwitchEvent `json:"events"`
}
