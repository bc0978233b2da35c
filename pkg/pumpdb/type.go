package pumpdb

// RawRow is one persisted measurement. Append-only; rows are never
// updated or deleted by this service (retention is an external concern).
// The power factor is a live-view quantity and is not persisted.
type RawRow struct {
	ID         int64 `db:"id"`
	TubewellID int   `db:"tubewell_id"`
	Timestamp  int64 `db:"timestamp"`

	VoltageA float64 `db:"voltage_a"`
	VoltageB float64 `db:"voltage_b"`
	VoltageC float64 `db:"voltage_c"`

	CurrentA float64 `db:"current_a"`
	CurrentB float64 `db:"current_b"`
	CurrentC float64 `db:"current_c"`

	ActivePowerA float64 `db:"active_power_a"`
	ActivePowerB float64 `db:"active_power_b"`
	ActivePowerC float64 `db:"active_power_c"`

	ReactivePowerA float64 `db:"reactive_power_a"`
	ReactivePowerB float64 `db:"reactive_power_b"`
	ReactivePowerC float64 `db:"reactive_power_c"`

	Frequency float64 `db:"frequency"`
}

// AggregateRow is one 15-minute bucket: per-metric arithmetic means
// over the contributing raw rows plus their count. At most one row
// exists per (tubewell_id, bucket_start).
type AggregateRow struct {
	ID          int64 `db:"id"`
	TubewellID  int   `db:"tubewell_id"`
	BucketStart int64 `db:"bucket_start"`

	VoltageAAvg float64 `db:"voltage_a_avg"`
	VoltageBAvg float64 `db:"voltage_b_avg"`
	VoltageCAvg float64 `db:"voltage_c_avg"`

	CurrentAAvg float64 `db:"current_a_avg"`
	CurrentBAvg float64 `db:"current_b_avg"`
	CurrentCAvg float64 `db:"current_c_avg"`

	ActivePowerAAvg float64 `db:"active_power_a_avg"`
	ActivePowerBAvg float64 `db:"active_power_b_avg"`
	ActivePowerCAvg float64 `db:"active_power_c_avg"`

	ReactivePowerAAvg float64 `db:"reactive_power_a_avg"`
	ReactivePowerBAvg float64 `db:"reactive_power_b_avg"`
	ReactivePowerCAvg float64 `db:"reactive_power_c_avg"`

	FrequencyAvg float64 `db:"frequency_avg"`
	DataPoints   int64   `db:"data_points"`
}
