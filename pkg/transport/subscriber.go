package transport

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Envelope is the JSON message the controllers publish: an external
// device id plus the hex-encoded telemetry frame.
type Envelope struct {
	DevID string `json:"devId"`
	Data  string `json:"data"`
}

// FrameHandler receives every well-formed envelope. Implementations
// must not panic and must swallow their own errors; the MQTT callback
// has nowhere to report them.
type FrameHandler interface {
	HandleFrame(devID, hexData string)
}

// Subscriber parses inbound telemetry envelopes off one topic and
// hands them to the frame handler.
type Subscriber struct {
	client  mqtt.Client
	topic   string
	handler FrameHandler
}

func NewSubscriber(client mqtt.Client, topic string, handler FrameHandler) *Subscriber {
	return &Subscriber{client: client, topic: topic, handler: handler}
}

func (s *Subscriber) Subscribe() error {
	token := s.client.Subscribe(s.topic, 1, s.onMessage)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("[mqtt] subscribed to %s", s.topic)
	return nil
}

func (s *Subscriber) onMessage(_ mqtt.Client, msg mqtt.Message) {
	var env Envelope
	if err := json.Unmarshal(msg.Payload(), &env); err != nil {
		log.Printf("[mqtt] dropping message on %s: bad envelope: %v", msg.Topic(), err)
		return
	}
	if env.DevID == "" || env.Data == "" {
		log.Printf("[mqtt] dropping message on %s: missing devId or data", msg.Topic())
		return
	}
	s.handler.HandleFrame(env.DevID, env.Data)
}
