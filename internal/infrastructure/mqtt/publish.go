package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Maximum payload size for MQTT messages (1MB).
const maxPayloadSize = 1 << 20

// validatePublish checks arguments and link state before handing a message to paho.
func (c *Client) validatePublish(topic string, payload []byte, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// PublishAsync hands a message to paho and returns without waiting.
//
// If the message cannot be sent at all (bad arguments, link down) the error
// is returned immediately and done is never called. Otherwise done is called
// exactly once from another goroutine with the broker's verdict: nil on
// acknowledgement, an ErrPublishFailed-wrapped error on failure or timeout.
// Nothing is queued for delivery after a reconnect.
func (c *Client) PublishAsync(topic string, payload []byte, qos byte, done func(error)) error {
	if err := c.validatePublish(topic, payload, qos); err != nil {
		return err
	}

	token := c.client.Publish(topic, qos, false, payload)
	go func() {
		err := awaitToken(token, publishTimeout)
		if done != nil {
			done(err)
		}
	}()
	return nil
}

// QoS returns the configured default QoS level.
func (c *Client) QoS() byte {
	return byte(c.cfg.QoS)
}

// publishStatus sends the retained bridge status message. It skips
// validatePublish: Close sends the offline form after leaving Connected.
func (c *Client) publishStatus(status, reason string) pahomqtt.Token {
	return c.client.Publish(
		Topics{}.BridgeStatus(c.cfg.Broker.ClientID),
		byte(c.cfg.QoS),
		true,
		statusPayload(status, c.cfg.Broker.ClientID, reason),
	)
}
