// Package notify bridges the internal event bus to the external broadcast
// mechanism. This core's obligation ends at constructing well-formed
// notification records and handing them to the broker.
package notify

import (
	"context"
	"encoding/json"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/lifeflow/bloodlink/infra/logger"
	"github.com/lifeflow/bloodlink/internal/eventbus"
)

// Config defines the MQTT broadcast settings.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// SetDefaults fills zero values with sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "bloodlink-notify"
	}
	if c.Topic == "" {
		c.Topic = "bloodlink/notifications"
	}
}

// pahoClient is the subset of the paho client the broadcaster needs.
type pahoClient interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Broadcaster publishes every bus event as a notification record on one
// MQTT topic.
type Broadcaster struct {
	cli   pahoClient
	topic string
	qos   byte
	bus   eventbus.EventBus
	log   logger.Logger
}

// NewBroadcaster connects to the broker and returns a Broadcaster.
func NewBroadcaster(cfg Config, bus eventbus.EventBus) (*Broadcaster, error) {
	cfg.SetDefaults()
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true)
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return newBroadcaster(cli, cfg, bus), nil
}

func newBroadcaster(cli pahoClient, cfg Config, bus eventbus.EventBus) *Broadcaster {
	return &Broadcaster{
		cli:   cli,
		topic: cfg.Topic,
		qos:   cfg.QoS,
		bus:   bus,
		log:   logger.New("notify"),
	}
}

// Run consumes bus events until the context is canceled. Publish failures
// are logged and dropped; notification delivery is best effort.
func (b *Broadcaster) Run(ctx context.Context) {
	sub := b.bus.Subscribe()
	defer b.bus.Unsubscribe(sub)
	for {
		select {
		case e, ok := <-sub:
			if !ok {
				return
			}
			b.publish(e.Notification())
		case <-ctx.Done():
			return
		}
	}
}

func (b *Broadcaster) publish(n interface{}) {
	payload, err := json.Marshal(n)
	if err != nil {
		b.log.Errorf("marshal notification: %v", err)
		return
	}
	if token := b.cli.Publish(b.topic, b.qos, false, payload); token.Wait() && token.Error() != nil {
		b.log.Errorf("publish notification: %v", token.Error())
	}
}

// Close disconnects from the broker.
func (b *Broadcaster) Close() {
	b.cli.Disconnect(250)
}
