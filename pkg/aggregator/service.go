// Package aggregator folds raw telemetry rows into 15-minute bucket
// averages on a fixed schedule.
package aggregator

import (
	"context"
	"log"
	"time"

	"github.com/AbidHayat/tubewell-project/pkg/pumpdb"
)

const DefaultInterval = 15 * time.Minute

type Service struct {
	db       *pumpdb.DB
	interval time.Duration
	now      func() time.Time
}

func New(db *pumpdb.DB, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{db: db, interval: interval, now: time.Now}
}

// Tick runs one aggregation pass: raw rows newer than the watermark
// (the newest bucket_start already aggregated) are folded into bucket
// rows. The bucket containing "now" is still filling and is excluded;
// the next tick covers it once it has closed. Safe to re-run: an
// unchanged watermark with no new raw rows inserts nothing.
func (s *Service) Tick() error {
	watermark, err := s.db.AggregateWatermark()
	if err != nil {
		return err
	}

	nowUnix := s.now().UTC().Unix()
	currentBucket := nowUnix - (nowUnix % pumpdb.BucketSeconds)

	added, err := s.db.AggregateRange(watermark, currentBucket)
	if err != nil {
		return err
	}
	if added > 0 {
		log.Printf("[aggregation] added %d bucket rows (watermark %d)", added, watermark)
	}
	return nil
}

// Run ticks on the configured interval until ctx is cancelled. A
// failed pass is logged and retried from the same watermark next tick.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Tick(); err != nil {
				log.Printf("[aggregation] pass failed: %v", err)
			}
		}
	}
}
