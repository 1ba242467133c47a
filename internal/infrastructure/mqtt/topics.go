package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefixBridge is the base for the bridge's own status topics.
const TopicPrefixBridge = "voicelight/bridge"

// Topics builds the topic strings used by the bridge.
//
//	topics := mqtt.Topics{Prefix: "lights"}
//	topics.LightControl("desk01") // "lights/desk01/control"
type Topics struct {
	// Prefix is the lighting controllers' root, "lights" by default.
	Prefix string
}

// LightControl returns the command topic of a lighting controller.
//
// Example: lights/desk01/control
func (t Topics) LightControl(device string) string {
	prefix := strings.Trim(t.Prefix, "/")
	if prefix == "" {
		prefix = "lights"
	}
	return fmt.Sprintf("%s/%s/control", prefix, strings.Trim(device, "/"))
}

// BridgeStatus returns the retained online/offline topic for a bridge instance.
//
// Example: voicelight/bridge/voicelight-bridge/status
func (Topics) BridgeStatus(clientID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixBridge, clientID)
}
