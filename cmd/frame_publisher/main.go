// Publishes simulated controller frames for bench testing the monitor
// without real hardware on the bus.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/AbidHayat/tubewell-project/pkg/frame"
	"github.com/AbidHayat/tubewell-project/pkg/transport"
	"github.com/AbidHayat/tubewell-project/pkg/types"
)

func main() {
	broker := flag.String("broker", "tcp://broker.hivemq.com:1883", "MQTT broker URL")
	topic := flag.String("topic", "/techno/pub", "telemetry topic")
	devID := flag.String("device", "device-1", "external device id to impersonate")
	interval := flag.Duration("interval", 2*time.Second, "publish interval")
	flag.Parse()

	opts := mqtt.NewClientOptions().
		AddBroker(*broker).
		SetClientID("tubewell-frame-publisher")
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	log.Printf("publishing frames for %s to %s every %v", *devID, *topic, *interval)

	for {
		rec := randomRecord()
		env := transport.Envelope{
			DevID: *devID,
			Data:  frame.Encode(rec),
		}
		payload, err := json.Marshal(env)
		if err != nil {
			log.Fatalf("marshal envelope: %v", err)
		}
		if token := client.Publish(*topic, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("publish failed: %v", token.Error())
		} else {
			log.Printf("published: V=%.1f/%.1f/%.1f I=%.2f/%.2f/%.2f f=%.2f",
				rec.VoltageV.A, rec.VoltageV.B, rec.VoltageV.C,
				rec.CurrentA.A, rec.CurrentA.B, rec.CurrentA.C,
				rec.FrequencyHz)
		}
		time.Sleep(*interval)
	}
}

func randomRecord() *types.Record {
	phases := func(lo, hi float64) types.PhaseValues {
		span := hi - lo
		return types.PhaseValues{
			A: lo + rand.Float64()*span,
			B: lo + rand.Float64()*span,
			C: lo + rand.Float64()*span,
		}
	}
	return &types.Record{
		VoltageV:        phases(210, 230),
		CurrentA:        phases(1, 5),
		ActivePowerKW:   phases(0.5, 2.0),
		ReactivePowerKW: phases(0.1, 1.0),
		PowerFactor:     phases(0.8, 1.0),
		FrequencyHz:     49.5 + rand.Float64(),
	}
}
