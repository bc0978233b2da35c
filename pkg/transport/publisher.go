package transport

import (
	"context"
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/AbidHayat/tubewell-project/pkg/commands"
)

// Publisher drains the command channel onto the control topic.
type Publisher struct {
	client mqtt.Client
	topic  string
	in     <-chan commands.Message
}

func NewPublisher(client mqtt.Client, topic string, in <-chan commands.Message) *Publisher {
	return &Publisher{client: client, topic: topic, in: in}
}

// Start publishes until ctx is cancelled or the channel closes.
func (p *Publisher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-p.in:
			if !ok {
				return
			}
			if err := p.publish(msg); err != nil {
				log.Printf("[mqtt] publish command failed: %v", err)
			}
		}
	}
}

func (p *Publisher) publish(msg commands.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, 1, false, payload)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("[mqtt] published %s command to %s", msg.MsgType, p.topic)
	return nil
}
