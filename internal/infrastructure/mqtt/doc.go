// Package mqtt provides MQTT client connectivity for the voicelight bridge.
//
// This package manages:
//   - Connection to the broker with automatic reconnect at a fixed interval
//   - Fire-and-forget publishing of LED commands
//   - A retained bridge status topic with Last Will and Testament (LWT)
//   - An explicit link State (disconnected, connecting, connected)
//
// # Architecture
//
// The bridge only publishes. Each LED controller subscribes to its own
// control topic, so the broker decouples the bridge from the devices.
//
//	voicelight bridge → MQTT Broker → LED controllers
//
// # Connection State
//
// State is driven by paho's connect, connection-lost and reconnecting
// callbacks. IsConnected is true only in the Connected state. Publishing in
// any other state fails fast with ErrNotConnected; nothing is buffered for
// later delivery.
//
// # Security Considerations
//
//   - Use an mqtts:// URL or broker.tls=true for brokers outside the host
//   - insecure_skip_verify exists for self-signed brokers and should stay off
//   - Credentials come from MQTT_USERNAME / MQTT_PASSWORD
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{Prefix: cfg.MQTT.TopicPrefix}.LightControl("desk")
//	err = client.PublishAsync(topic, payload, client.QoS(), func(err error) {
//	    // broker verdict
//	})
package mqtt
