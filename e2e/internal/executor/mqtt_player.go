package executor

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/saaga0h/daybreak/e2e/internal/scenario"
)

// MQTTPlayer publishes scenario steps to the MQTT broker
type MQTTPlayer struct {
	client mqtt.Client
	logger *log.Logger
}

// NewMQTTPlayer creates a new MQTT player
func NewMQTTPlayer(broker string, logger *log.Logger) (*MQTTPlayer, error) {
	if logger == nil {
		logger = log.Default()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("daybreak-test-player")
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	logger.Printf("Connected to MQTT broker at %s", broker)

	return &MQTTPlayer{
		client: client,
		logger: logger,
	}, nil
}

// PublishStep publishes one scenario step. A step without a payload
// publishes an empty JSON object, which is how the toggle command works.
func (p *MQTTPlayer) PublishStep(step scenario.Step) error {
	payload := step.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	// QoS 1 to ensure delivery
	token := p.client.Publish(step.Topic, 1, false, payloadBytes)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", step.Topic, token.Error())
	}

	p.logger.Printf("Published step to %s: %s", step.Topic, string(payloadBytes))

	return nil
}

// Close disconnects from MQTT broker
func (p *MQTTPlayer) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
		p.logger.Printf("Disconnected from MQTT broker")
	}
}
