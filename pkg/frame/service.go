// Package frame decodes the fixed-layout telemetry frames the pump
// controllers publish. Measurements are big-endian IEEE-754 single
// precision floats at fixed byte offsets.
package frame

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/AbidHayat/tubewell-project/pkg/types"
)

var (
	ErrShortFrame   = errors.New("frame: payload below minimum length")
	ErrMalformedHex = errors.New("frame: invalid hex encoding")
)

// Frames shorter than this many hex characters are rejected outright.
// The highest field offset is the frequency at byte 121 (through 124),
// but the controllers always send at least 125 bytes.
const MinHexChars = 250

// EncodedFrameBytes is the frame size the simulator emits; anything
// covering the last offset is accepted by Decode.
const EncodedFrameBytes = 200

const (
	offFrequency = 121
	floatBytes   = 4
)

var (
	offVoltage       = [3]int{13, 17, 21}
	offCurrent       = [3]int{29, 33, 37}
	offActivePower   = [3]int{49, 53, 57}
	offReactivePower = [3]int{65, 69, 73}
	offPowerFactor   = [3]int{97, 101, 105}
)

// Decode parses a hex-encoded frame into a measurement record.
// Whitespace anywhere in the payload is tolerated and stripped before
// the length gate. Decode has no side effects.
func Decode(raw string) (*types.Record, error) {
	cleaned := stripSpace(raw)
	if len(cleaned) < MinHexChars {
		return nil, fmt.Errorf("%w: %d hex chars, need %d", ErrShortFrame, len(cleaned), MinHexChars)
	}

	buf, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHex, err)
	}

	rec := &types.Record{
		ReceivedAt:      time.Now(),
		VoltageV:        phasesAt(buf, offVoltage, 1),
		CurrentA:        phasesAt(buf, offCurrent, 2),
		ActivePowerKW:   phasesAt(buf, offActivePower, 2),
		ReactivePowerKW: phasesAt(buf, offReactivePower, 2),
		PowerFactor:     phasesAt(buf, offPowerFactor, 3),
		FrequencyHz:     roundTo(float32At(buf, offFrequency), 2),
	}
	return rec, nil
}

// Encode builds a frame carrying the record's values at their wire
// offsets, zero-padded elsewhere. Used by the frame publisher tool and
// round-trip tests; the decoder is the source of truth for the layout.
func Encode(rec *types.Record) string {
	buf := make([]byte, EncodedFrameBytes)
	putPhases(buf, offVoltage, rec.VoltageV)
	putPhases(buf, offCurrent, rec.CurrentA)
	putPhases(buf, offActivePower, rec.ActivePowerKW)
	putPhases(buf, offReactivePower, rec.ReactivePowerKW)
	putPhases(buf, offPowerFactor, rec.PowerFactor)
	putFloat32(buf, offFrequency, rec.FrequencyHz)
	return strings.ToUpper(hex.EncodeToString(buf))
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func phasesAt(buf []byte, offsets [3]int, decimals int) types.PhaseValues {
	return types.PhaseValues{
		A: roundTo(float32At(buf, offsets[0]), decimals),
		B: roundTo(float32At(buf, offsets[1]), decimals),
		C: roundTo(float32At(buf, offsets[2]), decimals),
	}
}

func float32At(buf []byte, off int) float64 {
	bits := binary.BigEndian.Uint32(buf[off : off+floatBytes])
	return float64(math.Float32frombits(bits))
}

func putPhases(buf []byte, offsets [3]int, v types.PhaseValues) {
	putFloat32(buf, offsets[0], v.A)
	putFloat32(buf, offsets[1], v.B)
	putFloat32(buf, offsets[2], v.C)
}

func putFloat32(buf []byte, off int, v float64) {
	binary.BigEndian.PutUint32(buf[off:off+floatBytes], math.Float32bits(float32(v)))
}

// roundTo rounds half to even at the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.RoundToEven(v*scale) / scale
}
