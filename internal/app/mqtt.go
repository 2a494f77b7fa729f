package app

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_motion/internal/lifecycle"
	"github.com/relabs-tech/inertial_motion/internal/telemetry"
)

// connectMQTT connects to the broker and, when conn is non-nil, keeps the
// connection state machine in step with the client callbacks.
func connectMQTT(broker, clientID string, conn *lifecycle.ConnectionFSM) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	if conn != nil {
		opts.SetOnConnectHandler(func(mqtt.Client) {
			if err := conn.Connected(); err != nil {
				log.Printf("mqtt: %v", err)
			}
		})
		opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
			if err := conn.Disconnected(); err != nil {
				log.Printf("mqtt: %v", err)
			}
		})
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	log.Printf("connected to MQTT broker at %s", broker)
	return client, nil
}

func publishEvent(client mqtt.Client, topic string, ev telemetry.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("json marshal error (motion): %w", err)
	}
	if token := client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish error (%s): %w", topic, token.Error())
	}
	return nil
}

// eventPublisher publishes analysis events while the broker connection is
// up and counts the ones dropped while it is not.
type eventPublisher struct {
	client  mqtt.Client
	topic   string
	conn    *lifecycle.ConnectionFSM
	dropped int
}

func (p *eventPublisher) emit(ev telemetry.Event, changed bool) {
	if changed {
		log.Printf("motion: %s (h=%.3f v=%.3f)", ev.Direction, ev.EnergyH, ev.EnergyV)
	}
	if p.conn.Status() != lifecycle.ConnConnected {
		p.dropped++
		return
	}
	if err := publishEvent(p.client, p.topic, ev); err != nil {
		log.Printf("%v", err)
	}
}

// subscribeEvents delivers every motion event on topic to fn.
func subscribeEvents(client mqtt.Client, topic string, fn func(telemetry.Event)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev telemetry.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("MQTT payload unmarshal error: %v", err)
			return
		}
		fn(ev)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("subscribed to MQTT topic %s", topic)
	return nil
}
