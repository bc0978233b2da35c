package pumpdb

// Internal test package so the handle's clock can be pinned.

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbidHayat/tubewell-project/pkg/types"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "pump_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testRecord(voltageA float64) *types.Record {
	return &types.Record{
		VoltageV:        types.PhaseValues{A: voltageA, B: voltageA - 1, C: voltageA + 1},
		CurrentA:        types.PhaseValues{A: 4.0, B: 4.1, C: 4.2},
		ActivePowerKW:   types.PhaseValues{A: 1.5, B: 1.4, C: 1.6},
		ReactivePowerKW: types.PhaseValues{A: 0.3, B: 0.2, C: 0.4},
		FrequencyHz:     50.0,
	}
}

func TestInsertAndQueryRecent(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	base := now.Unix()
	require.NoError(t, db.InsertRawAt(0, testRecord(230.0), base-30))
	require.NoError(t, db.InsertRawAt(0, testRecord(231.0), base-10))
	require.NoError(t, db.InsertRawAt(1, testRecord(200.0), base-10))
	// Too old for a 20-second window.
	require.NoError(t, db.InsertRawAt(0, testRecord(999.0), base-3600))

	rows, err := db.QueryRecent(0, 40*time.Second)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first, and only device 0's rows.
	assert.Equal(t, 231.0, rows[0].VoltageA)
	assert.Equal(t, base-10, rows[0].Timestamp)
	assert.Equal(t, 230.0, rows[1].VoltageA)
	assert.Equal(t, 0, rows[0].TubewellID)
}

func TestQueryRecentCapped(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	base := now.Unix()
	for i := 0; i < RecentLimit+5; i++ {
		require.NoError(t, db.InsertRawAt(0, testRecord(220.0), base-int64(i)))
	}

	rows, err := db.QueryRecent(0, time.Hour)
	require.NoError(t, err)
	assert.Len(t, rows, RecentLimit)
	assert.Equal(t, base, rows[0].Timestamp)
}

func TestInsertRawAssignsServerTimestamp(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	require.NoError(t, db.InsertRaw(3, testRecord(230.0)))

	rows, err := db.QueryRecent(3, time.Minute)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, now.Unix(), rows[0].Timestamp)
}

func TestAggregateRangeBucketsAndAverages(t *testing.T) {
	db := openTestDB(t)

	// Two rows in one 15-minute bucket, one in the next.
	bucket := int64(1_748_772_000) - (1_748_772_000 % BucketSeconds)
	require.NoError(t, db.InsertRawAt(0, testRecord(230.0), bucket+10))
	require.NoError(t, db.InsertRawAt(0, testRecord(234.0), bucket+20))
	require.NoError(t, db.InsertRawAt(0, testRecord(228.0), bucket+BucketSeconds+5))

	added, err := db.AggregateRange(0, bucket+2*BucketSeconds)
	require.NoError(t, err)
	assert.Equal(t, int64(2), added)

	rows, err := db.QueryAggregated(0, bucket, bucket+2*BucketSeconds)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, bucket, rows[0].BucketStart)
	assert.Equal(t, 232.0, rows[0].VoltageAAvg)
	assert.Equal(t, int64(2), rows[0].DataPoints)

	assert.Equal(t, bucket+BucketSeconds, rows[1].BucketStart)
	assert.Equal(t, 228.0, rows[1].VoltageAAvg)
	assert.Equal(t, int64(1), rows[1].DataPoints)
}

func TestAggregateRangeIdempotent(t *testing.T) {
	db := openTestDB(t)

	bucket := int64(1_748_772_000) - (1_748_772_000 % BucketSeconds)
	require.NoError(t, db.InsertRawAt(0, testRecord(230.0), bucket+10))

	added, err := db.AggregateRange(0, bucket+BucketSeconds)
	require.NoError(t, err)
	assert.Equal(t, int64(1), added)

	// Replaying the same range inserts nothing new.
	added, err = db.AggregateRange(0, bucket+BucketSeconds)
	require.NoError(t, err)
	assert.Equal(t, int64(0), added)

	rows, err := db.QueryAggregated(0, bucket, bucket+BucketSeconds)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestAggregateWatermark(t *testing.T) {
	db := openTestDB(t)

	wm, err := db.AggregateWatermark()
	require.NoError(t, err)
	assert.Equal(t, int64(0), wm)

	bucket := int64(1_748_772_000) - (1_748_772_000 % BucketSeconds)
	require.NoError(t, db.InsertRawAt(0, testRecord(230.0), bucket+10))
	require.NoError(t, db.InsertRawAt(0, testRecord(230.0), bucket+BucketSeconds+10))
	_, err = db.AggregateRange(0, bucket+2*BucketSeconds)
	require.NoError(t, err)

	wm, err = db.AggregateWatermark()
	require.NoError(t, err)
	assert.Equal(t, bucket+BucketSeconds, wm)
}

func TestQueryAggregatedRangeBounds(t *testing.T) {
	db := openTestDB(t)

	bucket := int64(1_748_772_000) - (1_748_772_000 % BucketSeconds)
	for i := int64(0); i < 3; i++ {
		require.NoError(t, db.InsertRawAt(0, testRecord(230.0), bucket+i*BucketSeconds+1))
	}
	_, err := db.AggregateRange(0, bucket+3*BucketSeconds)
	require.NoError(t, err)

	// End bound is exclusive.
	rows, err := db.QueryAggregated(0, bucket, bucket+2*BucketSeconds)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, bucket, rows[0].BucketStart)
	assert.Equal(t, bucket+BucketSeconds, rows[1].BucketStart)
}
