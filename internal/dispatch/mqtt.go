// Package dispatch forwards remote commands to managed PCs.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"netclass-console/internal/config"
	"netclass-console/internal/model"
)

// CommandQoS is the MQTT delivery level for remote commands (at least once).
const CommandQoS byte = 1

const publishTimeout = 5 * time.Second

// ErrPublishTimeout is returned when the broker does not acknowledge a command in time.
var ErrPublishTimeout = errors.New("timed out waiting for broker acknowledgement")

// CommandTopic is the topic a PC agent subscribes to for its commands.
func CommandTopic(prefix string, pcID int) string {
	return fmt.Sprintf("%s/pcs/%d/commands", prefix, pcID)
}

// MQTTDispatcher publishes remote commands to an MQTT broker.
type MQTTDispatcher struct {
	client mqtt.Client
	prefix string
	logger *zap.Logger
}

// Connect dials the configured broker and returns a dispatcher using it.
func Connect(cfg config.MQTTConfig, logger *zap.Logger) (*MQTTDispatcher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return NewMQTTDispatcher(client, cfg.TopicPrefix, logger), nil
}

// NewMQTTDispatcher wraps an already connected client.
func NewMQTTDispatcher(client mqtt.Client, prefix string, logger *zap.Logger) *MQTTDispatcher {
	return &MQTTDispatcher{client: client, prefix: prefix, logger: logger}
}

// Dispatch publishes cmd to the PC's command topic and waits for the broker
// acknowledgement or ctx cancellation.
func (d *MQTTDispatcher) Dispatch(ctx context.Context, cmd model.RemoteCommand) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode command: %w", err)
	}

	topic := CommandTopic(d.prefix, cmd.PCID)
	token := d.client.Publish(topic, CommandQoS, false, payload)

	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("failed to publish to topic %s: %w", topic, ctx.Err())
	case <-timer.C:
		return fmt.Errorf("failed to publish to topic %s: %w", topic, ErrPublishTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}

	d.logger.Debug("Remote command published",
		zap.String("topic", topic),
		zap.String("command", cmd.Command),
		zap.Int("pc_id", cmd.PCID),
	)
	return nil
}

// Close disconnects from the broker.
func (d *MQTTDispatcher) Close() {
	d.client.Disconnect(250)
}
