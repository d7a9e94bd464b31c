package bus

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"ventilation_dashboard/internal/logger"
)

const (
	connectTimeout       = 10 * time.Second
	publishTimeout       = 5 * time.Second
	connectRetryInterval = 5 * time.Second
	subscribeQoS         = 0

	// disconnectQuiesce is how long Close waits for in-flight work, in ms.
	disconnectQuiesce = 250
)

// Config holds broker connection settings.
type Config struct {
	BrokerURL string
	ClientID  string
}

// Client wraps a paho MQTT client. Reconnect backoff is the transport
// library's concern; the client only re-subscribes the fixed topic set on
// every Connected transition.
type Client struct {
	cfg  Config
	log  *logger.Logger
	mqtt paho.Client
}

var _ Publisher = (*Client)(nil)

func NewClient(cfg Config, log *logger.Logger) *Client {
	return &Client{cfg: cfg, log: log}
}

// Start connects to the broker and routes every inbound message on the
// subscribed topics to handler. The OnConnect hook fires on the initial
// connect and on every reconnect, so subscriptions survive connection
// churn (re-subscribing is idempotent).
func (c *Client) Start(handler MessageHandler) error {
	route := func(_ paho.Client, m paho.Message) {
		handler(m.Topic(), m.Payload())
	}

	clientID := c.cfg.ClientID
	if clientID == "" {
		clientID = "ventilation-dashboard"
	}
	// Random suffix so parallel instances don't kick each other off.
	clientID = fmt.Sprintf("%s-%s", clientID, uuid.NewString()[:8])

	opts := paho.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(clientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(connectRetryInterval).
		SetOnConnectHandler(func(client paho.Client) {
			c.log.Infow("mqtt_connected", "broker", c.cfg.BrokerURL)
			for _, topic := range SubscribeTopics() {
				token := client.Subscribe(topic, subscribeQoS, route)
				token.Wait()
				if err := token.Error(); err != nil {
					c.log.Errorw("mqtt_subscribe_failed", "topic", topic, "err", err)
					continue
				}
				c.log.Infow("mqtt_subscribed", "topic", topic)
			}
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			c.log.Warnw("mqtt_connection_lost", "err", err)
		})

	c.mqtt = paho.NewClient(opts)

	token := c.mqtt.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	return nil
}

// Publish marshals payload as JSON and publishes it with QoS 0, not
// retained. The returned error reflects only the transport's ack of the
// publish attempt, not device receipt. No retry.
func (c *Client) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload for %s: %w", topic, err)
	}
	token := c.mqtt.Publish(topic, subscribeQoS, false, body)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// IsConnected reports whether the underlying transport is connected.
func (c *Client) IsConnected() bool {
	return c.mqtt != nil && c.mqtt.IsConnected()
}

// Close disconnects from the broker.
func (c *Client) Close() {
	if c.mqtt != nil {
		c.mqtt.Disconnect(disconnectQuiesce)
	}
}
