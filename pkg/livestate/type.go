package livestate

import (
	"sync"
	"time"

	"github.com/AbidHayat/tubewell-project/pkg/types"
)

// deviceSlot holds the mutable state of one pump controller.
// All fields are guarded by mu; slots are locked independently so a
// burst from one device never blocks readers of another.
type deviceSlot struct {
	mu sync.Mutex

	name   string
	status bool

	voltage       types.PhaseValues
	current       types.PhaseValues
	activePower   types.PhaseValues
	reactivePower types.PhaseValues
	powerFactor   types.PhaseValues
	frequency     float64

	// totalRuntime only grows; the running session is folded in
	// when the device transitions off.
	totalRuntime int64
	sessionStart time.Time

	events []types.SwitchEvent
}
