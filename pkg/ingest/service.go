// Package ingest orchestrates the telemetry pipeline: resolve the
// device, decode the frame, update live state, log history, persist
// the raw row and signal a durable snapshot. It also owns the toggle
// command path.
package ingest

import (
	"log"

	"github.com/AbidHayat/tubewell-project/pkg/commands"
	"github.com/AbidHayat/tubewell-project/pkg/frame"
	"github.com/AbidHayat/tubewell-project/pkg/history"
	"github.com/AbidHayat/tubewell-project/pkg/livestate"
	"github.com/AbidHayat/tubewell-project/pkg/pumpdb"
	"github.com/AbidHayat/tubewell-project/pkg/registry"
	"github.com/AbidHayat/tubewell-project/pkg/types"
)

// Broadcaster pushes applied records to live watchers. Optional.
type Broadcaster interface {
	Broadcast(slot int, rec *types.Record)
}

type Controller struct {
	registry *registry.DeviceRegistry
	state    *livestate.Pool
	history  *history.Buffer
	db       *pumpdb.DB

	cmdTable *commands.Table
	cmdOut   chan<- commands.Message

	feed Broadcaster
}

func NewController(
	reg *registry.DeviceRegistry,
	state *livestate.Pool,
	hist *history.Buffer,
	db *pumpdb.DB,
	cmdTable *commands.Table,
	cmdOut chan<- commands.Message,
) *Controller {
	return &Controller{
		registry: reg,
		state:    state,
		history:  hist,
		db:       db,
		cmdTable: cmdTable,
		cmdOut:   cmdOut,
	}
}

// SetFeed attaches a live broadcaster. Must be called before ingestion
// starts.
func (c *Controller) SetFeed(feed Broadcaster) {
	c.feed = feed
}

// HandleFrame ingests one transport message. Every failure degrades to
// a logged skip with no state mutation; nothing escapes to the
// transport callback.
func (c *Controller) HandleFrame(devID, hexData string) {
	slot, err := c.registry.Resolve(devID)
	if err != nil {
		log.Printf("[ingest] dropping frame: %v", err)
		return
	}

	rec, err := frame.Decode(hexData)
	if err != nil {
		log.Printf("[ingest] dropping frame from %s: %v", devID, err)
		return
	}

	if err := c.state.Apply(slot, rec); err != nil {
		log.Printf("[ingest] apply failed for %s: %v", devID, err)
		return
	}

	runtimeSecs, err := c.state.CurrentRuntime(slot)
	if err != nil {
		log.Printf("[ingest] runtime read failed for %s: %v", devID, err)
		return
	}

	// Append also signals the debounced snapshot writer.
	if err := c.history.Append(slot, rec, runtimeSecs); err != nil {
		log.Printf("[ingest] history append failed for %s: %v", devID, err)
	}

	if err := c.db.InsertRaw(slot, rec); err != nil {
		// In-memory state stays authoritative; the next frame retries.
		log.Printf("[ingest] raw insert failed for %s: %v", devID, err)
	}

	if c.feed != nil {
		c.feed.Broadcast(slot, rec)
	}
}

// Toggle flips a device and, when the slot has an RS-485 mapping,
// queues the matching switch command. The command send never blocks:
// if the publisher is backed up the command is dropped and logged.
func (c *Controller) Toggle(slot int) (bool, error) {
	on, err := c.state.Toggle(slot)
	if err != nil {
		return false, err
	}

	if msg, ok := c.cmdTable.For(slot, on); ok {
		select {
		case c.cmdOut <- msg:
		default:
			log.Printf("[ingest] command queue full, dropping switch command for slot %d", slot)
		}
	}
	return on, nil
}
