package frame_test

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbidHayat/tubewell-project/pkg/frame"
	"github.com/AbidHayat/tubewell-project/pkg/types"
)

// testFrame builds a zeroed 200-byte frame with float32 values planted
// at explicit byte offsets.
func testFrame(fields map[int]float64) string {
	buf := make([]byte, 200)
	for off, v := range fields {
		binary.BigEndian.PutUint32(buf[off:off+4], math.Float32bits(float32(v)))
	}
	return hex.EncodeToString(buf)
}

func TestDecodeVoltageOnly(t *testing.T) {
	// All zero except voltage A at bytes 13..16.
	raw := testFrame(map[int]float64{13: 230.0})

	rec, err := frame.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, 230.0, rec.VoltageV.A)
	assert.Equal(t, 0.0, rec.VoltageV.B)
	assert.Equal(t, 0.0, rec.VoltageV.C)
	assert.Equal(t, 0.0, rec.FrequencyHz)
	assert.False(t, rec.ReceivedAt.IsZero())
}

func TestDecodeAllFields(t *testing.T) {
	raw := testFrame(map[int]float64{
		13: 230.1, 17: 229.9, 21: 231.0,
		29: 12.25, 33: 12.5, 37: 11.75,
		49: 2.5, 53: 2.25, 57: 2.75,
		65: 0.5, 69: 0.25, 73: 0.75,
		97: 0.875, 101: 0.75, 105: 0.9375,
		121: 50.0,
	})

	rec, err := frame.Decode(raw)
	require.NoError(t, err)

	assert.InDelta(t, 230.1, rec.VoltageV.A, 0.0001)
	assert.InDelta(t, 229.9, rec.VoltageV.B, 0.0001)
	assert.Equal(t, 231.0, rec.VoltageV.C)
	assert.Equal(t, 12.25, rec.CurrentA.A)
	assert.Equal(t, 12.5, rec.CurrentA.B)
	assert.Equal(t, 11.75, rec.CurrentA.C)
	assert.Equal(t, 2.5, rec.ActivePowerKW.A)
	assert.Equal(t, 2.25, rec.ActivePowerKW.B)
	assert.Equal(t, 2.75, rec.ActivePowerKW.C)
	assert.Equal(t, 0.5, rec.ReactivePowerKW.A)
	assert.Equal(t, 0.25, rec.ReactivePowerKW.B)
	assert.Equal(t, 0.75, rec.ReactivePowerKW.C)
	assert.Equal(t, 0.875, rec.PowerFactor.A)
	assert.Equal(t, 0.75, rec.PowerFactor.B)
	assert.InDelta(t, 0.938, rec.PowerFactor.C, 0.0001)
	assert.Equal(t, 50.0, rec.FrequencyHz)
}

func TestDecodeIsDeterministic(t *testing.T) {
	raw := testFrame(map[int]float64{13: 220.456, 29: 3.14159, 121: 49.87})

	first, err := frame.Decode(raw)
	require.NoError(t, err)
	second, err := frame.Decode(raw)
	require.NoError(t, err)

	second.ReceivedAt = first.ReceivedAt
	assert.Equal(t, first, second)
}

// Rounding is half-to-even: a power factor of exactly 0.8125 lands on
// 0.812, not 0.813.
func TestDecodeRoundsHalfToEven(t *testing.T) {
	raw := testFrame(map[int]float64{97: 0.8125})

	rec, err := frame.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 0.812, rec.PowerFactor.A)
}

func TestDecodeRoundTrip(t *testing.T) {
	rec := &types.Record{
		VoltageV:        types.PhaseValues{A: 220.456, B: 219.93, C: 221.08},
		CurrentA:        types.PhaseValues{A: 4.321, B: 4.115, C: 3.998},
		ActivePowerKW:   types.PhaseValues{A: 1.234, B: 1.111, C: 0.987},
		ReactivePowerKW: types.PhaseValues{A: 0.456, B: 0.321, C: 0.299},
		PowerFactor:     types.PhaseValues{A: 0.9512, B: 0.8779, C: 0.9034},
		FrequencyHz:     50.049,
	}

	decoded, err := frame.Decode(frame.Encode(rec))
	require.NoError(t, err)

	assert.Equal(t, 220.5, decoded.VoltageV.A)
	assert.Equal(t, 219.9, decoded.VoltageV.B)
	assert.Equal(t, 221.1, decoded.VoltageV.C)
	assert.Equal(t, 4.32, decoded.CurrentA.A)
	// 4.115 is 4.1149997... as a float32, so it rounds down.
	assert.Equal(t, 4.11, decoded.CurrentA.B)
	assert.Equal(t, 4.0, decoded.CurrentA.C)
	assert.Equal(t, 1.23, decoded.ActivePowerKW.A)
	assert.Equal(t, 0.951, decoded.PowerFactor.A)
	assert.Equal(t, 50.05, decoded.FrequencyHz)
}

func TestDecodeShortFrame(t *testing.T) {
	raw := strings.Repeat("ab", 124) // 248 hex chars, below the floor

	_, err := frame.Decode(raw)
	require.ErrorIs(t, err, frame.ErrShortFrame)
}

func TestDecodeShortAfterWhitespaceStrip(t *testing.T) {
	// Whitespace must not count toward the length gate.
	raw := strings.Repeat("ab", 124) + strings.Repeat(" \n", 10)

	_, err := frame.Decode(raw)
	require.ErrorIs(t, err, frame.ErrShortFrame)
}

func TestDecodeToleratesWhitespaceAndCase(t *testing.T) {
	raw := testFrame(map[int]float64{13: 230.0})
	spaced := strings.ToUpper(raw[:40]) + "\n " + raw[40:]

	rec, err := frame.Decode(spaced)
	require.NoError(t, err)
	assert.Equal(t, 230.0, rec.VoltageV.A)
}

func TestDecodeMalformedHex(t *testing.T) {
	raw := strings.Repeat("zz", 125)

	_, err := frame.Decode(raw)
	require.ErrorIs(t, err, frame.ErrMalformedHex)
}

func TestDecodeOddLengthHex(t *testing.T) {
	raw := strings.Repeat("ab", 125) + "c"

	_, err := frame.Decode(raw)
	require.ErrorIs(t, err, frame.ErrMalformedHex)
}
