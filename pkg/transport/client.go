// Package transport connects the core to the MQTT broker the pump
// controllers publish on: one subscriber feeding the ingestion
// controller, one publisher draining the command channel.
package transport

import (
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ClientConfig holds MQTT connection settings.
type ClientConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// Client manages the broker connection; subscribing and publishing
// live in Subscriber and Publisher.
type Client struct {
	client mqtt.Client
}

func NewClient(config ClientConfig) (*Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Println("[mqtt] connection established")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("[mqtt] connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("transport: connect to broker %s: %w", config.Broker, token.Error())
	}
	log.Printf("[mqtt] connected to broker %s", config.Broker)

	return &Client{client: client}, nil
}

// Native returns the underlying paho client for Subscriber/Publisher.
func (c *Client) Native() mqtt.Client {
	return c.client
}

func (c *Client) Close() {
	c.client.Disconnect(250)
	log.Println("[mqtt] disconnected")
}
