package pumpdb

import (
	"fmt"
	"time"

	"github.com/AbidHayat/tubewell-project/pkg/types"
)

// RecentLimit caps QueryRecent result sets.
const RecentLimit = 20

// BucketSeconds is the aggregate bucket width.
const BucketSeconds = 900

// InsertRaw appends one measurement row. The timestamp is assigned
// server-side at call time, not from the record, so the aggregation
// watermark stays monotonic against wall clock.
func (d *DB) InsertRaw(tubewellID int, rec *types.Record) error {
	return d.InsertRawAt(tubewellID, rec, d.now().UTC().Unix())
}

// InsertRawAt is InsertRaw with an explicit timestamp, for backfills.
func (d *DB) InsertRawAt(tubewellID int, rec *types.Record, ts int64) error {
	_, err := d.conn.Exec(
		"INSERT INTO raw_data "+
			"(tubewell_id, timestamp, voltage_a, voltage_b, voltage_c, "+
			"current_a, current_b, current_c, active_power_a, active_power_b, active_power_c, "+
			"reactive_power_a, reactive_power_b, reactive_power_c, frequency) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		tubewellID, ts,
		rec.VoltageV.A, rec.VoltageV.B, rec.VoltageV.C,
		rec.CurrentA.A, rec.CurrentA.B, rec.CurrentA.C,
		rec.ActivePowerKW.A, rec.ActivePowerKW.B, rec.ActivePowerKW.C,
		rec.ReactivePowerKW.A, rec.ReactivePowerKW.B, rec.ReactivePowerKW.C,
		rec.FrequencyHz,
	)
	if err != nil {
		return fmt.Errorf("pumpdb: insert raw row: %w", err)
	}
	return nil
}

// QueryRecent returns raw rows newer than now-window for one device,
// newest first, capped at RecentLimit.
func (d *DB) QueryRecent(tubewellID int, window time.Duration) ([]RawRow, error) {
	cutoff := d.now().UTC().Add(-window).Unix()
	rows, err := d.conn.Query(
		"SELECT id, tubewell_id, timestamp, voltage_a, voltage_b, voltage_c, "+
			"current_a, current_b, current_c, active_power_a, active_power_b, active_power_c, "+
			"reactive_power_a, reactive_power_b, reactive_power_c, frequency "+
			"FROM raw_data WHERE tubewell_id = ? AND timestamp > ? "+
			"ORDER BY timestamp DESC LIMIT ?",
		tubewellID, cutoff, RecentLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("pumpdb: query recent: %w", err)
	}
	defer rows.Close()

	var out []RawRow
	for rows.Next() {
		var r RawRow
		if err := rows.Scan(
			&r.ID, &r.TubewellID, &r.Timestamp,
			&r.VoltageA, &r.VoltageB, &r.VoltageC,
			&r.CurrentA, &r.CurrentB, &r.CurrentC,
			&r.ActivePowerA, &r.ActivePowerB, &r.ActivePowerC,
			&r.ReactivePowerA, &r.ReactivePowerB, &r.ReactivePowerC,
			&r.Frequency,
		); err != nil {
			return nil, fmt.Errorf("pumpdb: scan raw row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// QueryAggregated returns bucket rows with bucket_start in [start, end)
// for one device, oldest first.
func (d *DB) QueryAggregated(tubewellID int, start, end int64) ([]AggregateRow, error) {
	rows, err := d.conn.Query(
		"SELECT id, tubewell_id, bucket_start, "+
			"voltage_a_avg, voltage_b_avg, voltage_c_avg, "+
			"current_a_avg, current_b_avg, current_c_avg, "+
			"active_power_a_avg, active_power_b_avg, active_power_c_avg, "+
			"reactive_power_a_avg, reactive_power_b_avg, reactive_power_c_avg, "+
			"frequency_avg, data_points "+
			"FROM aggregated_data WHERE tubewell_id = ? AND bucket_start >= ? AND bucket_start < ? "+
			"ORDER BY bucket_start",
		tubewellID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("pumpdb: query aggregated: %w", err)
	}
	defer rows.Close()

	var out []AggregateRow
	for rows.Next() {
		var r AggregateRow
		if err := rows.Scan(
			&r.ID, &r.TubewellID, &r.BucketStart,
			&r.VoltageAAvg, &r.VoltageBAvg, &r.VoltageCAvg,
			&r.CurrentAAvg, &r.CurrentBAvg, &r.CurrentCAvg,
			&r.ActivePowerAAvg, &r.ActivePowerBAvg, &r.ActivePowerCAvg,
			&r.ReactivePowerAAvg, &r.ReactivePowerBAvg, &r.ReactivePowerCAvg,
			&r.FrequencyAvg, &r.DataPoints,
		); err != nil {
			return nil, fmt.Errorf("pumpdb: scan aggregate row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AggregateWatermark returns the newest bucket_start already
// aggregated, or 0 when no aggregates exist yet.
func (d *DB) AggregateWatermark() (int64, error) {
	var watermark int64
	err := d.conn.QueryRow(
		"SELECT COALESCE(MAX(bucket_start), 0) FROM aggregated_data",
	).Scan(&watermark)
	if err != nil {
		return 0, fmt.Errorf("pumpdb: query watermark: %w", err)
	}
	return watermark, nil
}

// AggregateRange folds raw rows with timestamp in (after, before) into
// 15-minute buckets, one row per (device, bucket), and reports how many
// bucket rows were inserted. INSERT OR IGNORE plus the unique
// (tubewell_id, bucket_start) index makes a replayed range a no-op, so
// the at-least-once scheduler can never double-insert.
func (d *DB) AggregateRange(after, before int64) (int64, error) {
	res, err := d.conn.Exec(
		"INSERT OR IGNORE INTO aggregated_data "+
			"(tubewell_id, bucket_start, "+
			"voltage_a_avg, voltage_b_avg, voltage_c_avg, "+
			"current_a_avg, current_b_avg, current_c_avg, "+
			"active_power_a_avg, active_power_b_avg, active_power_c_avg, "+
			"reactive_power_a_avg, reactive_power_b_avg, reactive_power_c_avg, "+
			"frequency_avg, data_points) "+
			"SELECT tubewell_id, timestamp - (timestamp % ?) AS bucket_start, "+
			"AVG(voltage_a), AVG(voltage_b), AVG(voltage_c), "+
			"AVG(current_a), AVG(current_b), AVG(current_c), "+
			"AVG(active_power_a), AVG(active_power_b), AVG(active_power_c), "+
			"AVG(reactive_power_a), AVG(reactive_power_b), AVG(reactive_power_c), "+
			"AVG(frequency), COUNT(*) "+
			"FROM raw_data WHERE timestamp > ? AND timestamp < ? "+
			"GROUP BY tubewell_id, bucket_start "+
			"HAVING COUNT(*) > 0",
		BucketSeconds, after, before,
	)
	if err != nil {
		return 0, fmt.Errorf("pumpdb: aggregate range: %w", err)
	}
	added, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pumpdb: aggregate rows affected: %w", err)
	}
	return added, nil
}
