// Package mqtt bridges fleet telemetry onto an MQTT broker so external
// dashboards can follow the simulation without holding an in-process
// subscription.
package mqtt

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/fleetgrid/supplyline/core/logger"
	"github.com/fleetgrid/supplyline/core/telemetry"
)

// Client is the subset of the paho client the bridge needs.
type Client interface {
	IsConnected() bool
	Disconnect(uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Config holds broker connection settings.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	TopicPrefix string `json:"topic_prefix"`
	QOS         byte   `json:"qos"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "supplyline-bridge"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "supplyline"
	}
}

// Validate checks required fields when the bridge is enabled.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("mqtt: broker required when enabled")
	}
	return nil
}

// newClient is swapped out in tests.
var newClient = func(cfg Config) (Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	client := paho.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return client, nil
}

// Bridge republishes telemetry updates to the broker. Snapshots go to
// <prefix>/state, ticks to <prefix>/ticks.
type Bridge struct {
	cfg    Config
	client Client
	log    logger.Logger
}

// NewBridge connects to the broker.
func NewBridge(cfg Config, log logger.Logger) (*Bridge, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &Bridge{cfg: cfg, client: client, log: log}, nil
}

// Run consumes the update stream until the context is cancelled or the
// channel closes. It publishes every update and logs publish failures
// without stopping.
func (b *Bridge) Run(ctx context.Context, updates <-chan telemetry.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			if err := b.publish(upd); err != nil {
				b.log.Errorf("mqtt publish failed: %v", err)
			}
		}
	}
}

func (b *Bridge) publish(upd telemetry.Update) error {
	payload, err := json.Marshal(upd)
	if err != nil {
		return err
	}
	topic := b.cfg.TopicPrefix + "/ticks"
	if upd.Type == telemetry.UpdateSnapshot {
		topic = b.cfg.TopicPrefix + "/state"
	}
	token := b.client.Publish(topic, b.cfg.QOS, false, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (b *Bridge) Close() {
	if b.client.IsConnected() {
		b.client.Disconnect(250)
	}
}
