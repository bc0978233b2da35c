// Package history keeps a bounded per-device, per-metric sample log and
// persists it to disk as a JSON snapshot between restarts.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/AbidHayat/tubewell-project/pkg/types"
)

// DefaultLimit is the retained sample count per metric per device.
const DefaultLimit = 500

// Metric keys as stored in snapshots and served to the web collaborator.
const (
	MetricVoltage       = "voltage"
	MetricCurrent       = "current"
	MetricActivePower   = "active_power"
	MetricReactivePower = "reactive_power"
	MetricPowerFactor   = "power_factor"
	MetricFrequency     = "frequency"
	MetricRuntime       = "runtime"
)

var metricKeys = []string{
	MetricVoltage, MetricCurrent, MetricActivePower,
	MetricReactivePower, MetricPowerFactor,
	MetricFrequency, MetricRuntime,
}

var ErrInvalidSlot = errors.New("history: slot index out of range")

// Sample is one retained measurement. Phase is empty for scalar metrics.
type Sample struct {
	Time  time.Time   `json:"time"`
	Phase types.Phase `json:"phase,omitempty"`
	Value float64     `json:"value"`
}

type deviceLog map[string][]Sample

// Buffer holds the bounded logs for the whole pool. A single mutex is
// enough here: one message per device every few seconds.
type Buffer struct {
	mu      sync.Mutex
	limit   int
	devices []deviceLog

	// dirty is the debounce slot for the snapshot writer: any number of
	// change signals collapse into one pending write.
	dirty chan struct{}
}

func NewBuffer(poolSize, limit int) *Buffer {
	if limit <= 0 {
		limit = DefaultLimit
	}
	b := &Buffer{
		limit:   limit,
		devices: make([]deviceLog, poolSize),
		dirty:   make(chan struct{}, 1),
	}
	for i := range b.devices {
		b.devices[i] = emptyLog()
	}
	return b
}

func emptyLog() deviceLog {
	l := make(deviceLog, len(metricKeys))
	for _, k := range metricKeys {
		l[k] = []Sample{}
	}
	return l
}

func (b *Buffer) log(slot int) (deviceLog, error) {
	if slot < 0 || slot >= len(b.devices) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	return b.devices[slot], nil
}

// Append logs the record's values: three samples per phase metric, one
// scalar sample each for frequency and runtime, all sharing the
// record's timestamp. Each metric sequence is then trimmed to the most
// recent limit entries and the snapshot writer is signalled.
func (b *Buffer) Append(slot int, rec *types.Record, runtimeSecs int64) error {
	b.mu.Lock()
	l, err := b.log(slot)
	if err != nil {
		b.mu.Unlock()
		return err
	}

	at := rec.ReceivedAt
	for _, ph := range types.Phases {
		l[MetricVoltage] = append(l[MetricVoltage], Sample{Time: at, Phase: ph, Value: rec.VoltageV.Get(ph)})
		l[MetricCurrent] = append(l[MetricCurrent], Sample{Time: at, Phase: ph, Value: rec.CurrentA.Get(ph)})
		l[MetricActivePower] = append(l[MetricActivePower], Sample{Time: at, Phase: ph, Value: rec.ActivePowerKW.Get(ph)})
		l[MetricReactivePower] = append(l[MetricReactivePower], Sample{Time: at, Phase: ph, Value: rec.ReactivePowerKW.Get(ph)})
		l[MetricPowerFactor] = append(l[MetricPowerFactor], Sample{Time: at, Phase: ph, Value: rec.PowerFactor.Get(ph)})
	}
	l[MetricFrequency] = append(l[MetricFrequency], Sample{Time: at, Value: rec.FrequencyHz})
	l[MetricRuntime] = append(l[MetricRuntime], Sample{Time: at, Value: float64(runtimeSecs)})

	for _, k := range metricKeys {
		if excess := len(l[k]) - b.limit; excess > 0 {
			l[k] = append([]Sample(nil), l[k][excess:]...)
		}
	}
	b.mu.Unlock()

	b.Signal()
	return nil
}

// Read returns a deep copy of the slot's metric sequences in arrival order.
func (b *Buffer) Read(slot int) (map[string][]Sample, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	l, err := b.log(slot)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]Sample, len(metricKeys))
	for _, k := range metricKeys {
		out[k] = append([]Sample{}, l[k]...)
	}
	return out, nil
}

// Signal requests a durable snapshot. Non-blocking: when a write is
// already pending the extra signal is discarded, never queued.
func (b *Buffer) Signal() {
	select {
	case b.dirty <- struct{}{}:
	default:
	}
}

// Changes exposes the pending-snapshot channel to the saver loop.
func (b *Buffer) Changes() <-chan struct{} {
	return b.dirty
}

const (
	saveRetries    = 5
	saveRetryDelay = 100 * time.Millisecond
)

// SaveSnapshot writes the whole buffer to path using write-temp-then-
// rename so readers never observe a partial file. The rename is retried
// a few times to ride out transient file locks; on exhaustion the error
// is returned and in-memory state stays authoritative.
func (b *Buffer) SaveSnapshot(path string) error {
	b.mu.Lock()
	data, err := json.MarshalIndent(b.devices, "", "  ")
	b.mu.Unlock()
	if err != nil {
		return fmt.Errorf("history: marshal snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("history: write snapshot: %w", err)
	}
	defer os.Remove(tmp)

	for attempt := 1; ; attempt++ {
		err = os.Rename(tmp, path)
		if err == nil {
			return nil
		}
		if attempt >= saveRetries {
			return fmt.Errorf("history: replace snapshot after %d attempts: %w", attempt, err)
		}
		time.Sleep(saveRetryDelay)
	}
}

// LoadSnapshot restores a previously saved buffer. A missing or
// unreadable file is not an error: the buffer starts fresh.
func (b *Buffer) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("history: read snapshot: %w", err)
	}

	var loaded []deviceLog
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.Printf("[history] snapshot at %s is invalid, starting fresh: %v", path, err)
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.devices {
		if i >= len(loaded) || loaded[i] == nil {
			continue
		}
		l := emptyLog()
		for _, k := range metricKeys {
			samples := loaded[i][k]
			if excess := len(samples) - b.limit; excess > 0 {
				samples = samples[excess:]
			}
			l[k] = append(l[k], samples...)
		}
		b.devices[i] = l
	}
	return nil
}

// RunSaver drains snapshot signals and writes the buffer to path,
// also saving on a fixed interval as a safety net. Blocks until ctx is
// cancelled; a final save runs on the way out.
func (b *Buffer) RunSaver(ctx context.Context, path string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	save := func() {
		if err := b.SaveSnapshot(path); err != nil {
			log.Printf("[history] snapshot save failed: %v", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			save()
			return
		case <-b.dirty:
			save()
		case <-ticker.C:
			save()
		}
	}
}
