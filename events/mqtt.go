package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gofiber/fiber/v2/log"
)

const (
	connectTimeout = 3 * time.Second
	publishTimeout = 2 * time.Second
)

// newClient is swapped in tests.
var newClient = mqtt.NewClient

// MQTT publishes events to <prefix>/users/<user_id> at QoS 0.
type MQTT struct {
	client mqtt.Client
	prefix string
}

// ParseURL splits MQTT_URL (tcp://host:port/prefix) into the broker
// address and the topic prefix. The prefix defaults to "todo".
func ParseURL(raw string) (broker, prefix string, err error) {
	uri, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse MQTT_URL: %w", err)
	}
	if uri.Host == "" {
		return "", "", errors.New("MQTT_URL has no host")
	}
	scheme := uri.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}
	prefix = strings.Trim(uri.Path, "/")
	if prefix == "" {
		prefix = "todo"
	}
	return fmt.Sprintf("%s://%s", scheme, uri.Host), prefix, nil
}

// Topic returns the topic an event is published on.
func Topic(prefix string, ev Event) string {
	return prefix + "/users/" + ev.UserID
}

// NewMQTT connects to the broker named by rawURL.
func NewMQTT(rawURL, clientID string) (*MQTT, error) {
	broker, prefix, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	uri, _ := url.Parse(rawURL)

	opts := createClientOptions(clientID, broker, uri)
	client := newClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to %s: timed out", broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, err)
	}
	log.Infof("Connected to MQTT broker %s, topic prefix %q", broker, prefix)
	return newMQTT(client, prefix), nil
}

func newMQTT(client mqtt.Client, prefix string) *MQTT {
	return &MQTT{client: client, prefix: prefix}
}

func createClientOptions(clientID, broker string, uri *url.URL) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	if uri != nil && uri.User != nil {
		opts.SetUsername(uri.User.Username())
		password, _ := uri.User.Password()
		opts.SetPassword(password)
	}
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warnf("MQTT connection lost: %v", err)
	})
	return opts
}

func (m *MQTT) Publish(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	tok := m.client.Publish(Topic(m.prefix, ev), 0, false, payload)
	if !tok.WaitTimeout(publishTimeout) {
		return errors.New("mqtt publish timed out")
	}
	return tok.Error()
}

func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
