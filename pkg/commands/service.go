// Package commands builds the RS-485 switch commands published to the
// pump controllers. Each command is a Modbus write-single-register
// frame (register 0, value 1 = on, 2 = off) with a CRC16 trailer,
// hex-encoded inside a JSON envelope.
package commands

import (
	"encoding/hex"
	"strings"

	"github.com/sigurn/crc16"
)

const MsgTypeSetRs485 = "setRs485Value"

const (
	funcWriteSingleRegister = 0x06
	switchRegisterValueOn   = 0x01
	switchRegisterValueOff  = 0x02
)

// Message is the outbound command envelope.
type Message struct {
	MsgType string `json:"msgType"`
	Data    string `json:"data"`
}

// Table maps device slots to their RS-485 unit ids. Slots without an
// entry cannot be switched remotely; toggling them only changes local
// state.
type Table struct {
	units    map[int]uint8
	crcTable *crc16.Table
}

func NewTable(units map[int]uint8) *Table {
	t := &Table{
		units:    make(map[int]uint8, len(units)),
		crcTable: crc16.MakeTable(crc16.CRC16_MODBUS),
	}
	for slot, unit := range units {
		t.units[slot] = unit
	}
	return t
}

// For returns the switch command for a slot and desired state, and
// whether the slot has a command mapping at all.
func (t *Table) For(slot int, on bool) (Message, bool) {
	unit, ok := t.units[slot]
	if !ok {
		return Message{}, false
	}
	return Message{
		MsgType: MsgTypeSetRs485,
		Data:    t.buildFrame(unit, on),
	}, true
}

func (t *Table) buildFrame(unit uint8, on bool) string {
	value := byte(switchRegisterValueOff)
	if on {
		value = switchRegisterValueOn
	}
	buf := []byte{unit, funcWriteSingleRegister, 0x00, 0x00, 0x00, value}
	crc := crc16.Checksum(buf, t.crcTable)
	// CRC goes on the wire low byte first.
	buf = append(buf, byte(crc&0xFF), byte(crc>>8))
	return strings.ToUpper(hex.EncodeToString(buf))
}
