package types

import "time"

// Phase identifies one leg of the three-phase supply.
type Phase string

const (
	PhaseA Phase = "A"
	PhaseB Phase = "B"
	PhaseC Phase = "C"
)

// Phases lists the legs in wire order.
var Phases = [3]Phase{PhaseA, PhaseB, PhaseC}

// PhaseValues holds one value per phase.
type PhaseValues struct {
	A float64 `json:"A"`
	B float64 `json:"B"`
	C float64 `json:"C"`
}

func (p PhaseValues) Get(ph Phase) float64 {
	switch ph {
	case PhaseA:
		return p.A
	case PhaseB:
		return p.B
	default:
		return p.C
	}
}

// Record is one decoded measurement frame from a pump controller.
// Records are immutable once produced by the decoder.
type Record struct {
	ReceivedAt time.Time `json:"received_at"`

	VoltageV        PhaseValues `json:"voltage"`
	CurrentA        PhaseValues `json:"current"`
	ActivePowerKW   PhaseValues `json:"active_power"`
	ReactivePowerKW PhaseValues `json:"reactive_power"`
	PowerFactor     PhaseValues `json:"power_factor"`
	FrequencyHz     float64     `json:"frequency"`
}
