package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordedFrame struct {
	devID, hexData string
}

type captureHandler struct {
	frames []recordedFrame
}

func (h *captureHandler) HandleFrame(devID, hexData string) {
	h.frames = append(h.frames, recordedFrame{devID, hexData})
}

// stubMessage satisfies mqtt.Message for driving onMessage directly.
type stubMessage struct {
	payload []byte
}

func (m *stubMessage) Duplicate() bool   { return false }
func (m *stubMessage) Qos() byte         { return 1 }
func (m *stubMessage) Retained() bool    { return false }
func (m *stubMessage) Topic() string     { return "/techno/pub" }
func (m *stubMessage) MessageID() uint16 { return 1 }
func (m *stubMessage) Payload() []byte   { return m.payload }
func (m *stubMessage) Ack()              {}

func TestOnMessageValidEnvelope(t *testing.T) {
	h := &captureHandler{}
	s := &Subscriber{topic: "/techno/pub", handler: h}

	s.onMessage(nil, &stubMessage{payload: []byte(`{"devId":"device-1","data":"abcd"}`)})

	assert.Equal(t, []recordedFrame{{"device-1", "abcd"}}, h.frames)
}

func TestOnMessageBadJSON(t *testing.T) {
	h := &captureHandler{}
	s := &Subscriber{topic: "/techno/pub", handler: h}

	s.onMessage(nil, &stubMessage{payload: []byte(`not json`)})

	assert.Empty(t, h.frames)
}

func TestOnMessageMissingFields(t *testing.T) {
	h := &captureHandler{}
	s := &Subscriber{topic: "/techno/pub", handler: h}

	s.onMessage(nil, &stubMessage{payload: []byte(`{"devId":"device-1"}`)})
	s.onMessage(nil, &stubMessage{payload: []byte(`{"data":"abcd"}`)})
	s.onMessage(nil, &stubMessage{payload: []byte(`{}`)})

	assert.Empty(t, h.frames)
}

func TestOnMessageIgnoresExtraFields(t *testing.T) {
	h := &captureHandler{}
	s := &Subscriber{topic: "/techno/pub", handler: h}

	s.onMessage(nil, &stubMessage{payload: []byte(`{"devId":"device-2","data":"ff00","seq":42}`)})

	assert.Equal(t, []recordedFrame{{"device-2", "ff00"}}, h.frames)
}
