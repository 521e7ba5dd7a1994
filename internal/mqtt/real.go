package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// OutboxSize is the number of messages held while the broker is unreachable.
const OutboxSize = 256

// RealPublisher publishes to an actual MQTT broker.
// Messages published while disconnected are replayed on reconnect.
type RealPublisher struct {
	client paho.Client
	topic  string

	// deliver sends one message to the broker.
	deliver func(pending) error

	mu     sync.Mutex
	outbox *outbox
	// online is set once the outbox has been replayed after a connect and
	// cleared when the connection drops. Sends buffer while it is false.
	online    bool
	connected bool // true after the first successful connect
}

// NewRealPublisher creates a publisher for the given broker. The device keeps
// working offline, so an unreachable broker is logged, not returned as an error;
// the client keeps retrying in the background.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	p := &RealPublisher{
		topic:  Topic,
		outbox: newOutbox(OutboxSize),
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "OFFLINE",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.mu.Lock()
			p.online = false
			p.mu.Unlock()
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.deliver = p.publishWait
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, buffering", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// onConnect runs on paho's goroutine after every (re)connect.
func (p *RealPublisher) onConnect(_ paho.Client) {
	p.mu.Lock()
	reconnect := p.connected
	p.connected = true
	p.mu.Unlock()

	if reconnect {
		log.Printf("mqtt: reconnected")
		payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		if err != nil {
			log.Printf("mqtt: format reconnected event: %v", err)
		} else if err := p.deliver(pending{topic: TopicSystem, payload: payload, qos: 1}); err != nil {
			log.Printf("mqtt: publish reconnected event: %v", err)
		}
	}

	p.replay()
}

// replay drains the outbox in order. Messages sent while a batch is in
// flight join the outbox and go out in the next batch, so nothing overtakes
// an older buffered message.
func (p *RealPublisher) replay() {
	for {
		p.mu.Lock()
		msgs, dropped := p.outbox.take()
		if len(msgs) == 0 {
			p.online = true
		}
		p.mu.Unlock()

		if dropped > 0 {
			log.Printf("mqtt: outbox overflowed, %d messages dropped", dropped)
		}
		if len(msgs) == 0 {
			return
		}
		log.Printf("mqtt: replaying %d buffered messages", len(msgs))
		for _, m := range msgs {
			if err := p.deliver(m); err != nil {
				log.Printf("mqtt: replay to %s: %v", m.topic, err)
			}
		}
	}
}

func (p *RealPublisher) send(msg pending) error {
	p.mu.Lock()
	if !p.online {
		p.outbox.add(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	return p.deliver(msg)
}

// publishWait publishes through paho and waits for the token.
func (p *RealPublisher) publishWait(msg pending) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Publish sends a button event to the MQTT broker.
func (p *RealPublisher) Publish(event ButtonEvent) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.send(pending{topic: p.topic, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events
	if err := p.send(pending{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained}); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// IsConnected reports whether the connection to the broker is open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
