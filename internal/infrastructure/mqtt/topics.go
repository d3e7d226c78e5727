package mqtt

import "fmt"

// Topic prefixes for the earpanel topic hierarchy.
//
//	earpanel/event/{event_type}      session events (not retained)
//	earpanel/state/active            active device read-out (retained)
//	earpanel/command/{action}        inbound commands
//	earpanel/system/status           online/offline and LWT (retained)
const (
	// TopicPrefix is the base for every earpanel topic.
	TopicPrefix = "earpanel"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "earpanel/system"
)

// Topics provides builders for earpanel MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.Event("device.connected") // "earpanel/event/device.connected"
type Topics struct{}

// Event returns the topic for one session event type.
//
// Example: earpanel/event/scan.completed
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, eventType)
}

// ActiveState returns the retained topic carrying the active device summary.
func (Topics) ActiveState() string {
	return TopicPrefix + "/state/active"
}

// Command returns the topic for one inbound command.
//
// Example: earpanel/command/connect
func (Topics) Command(action string) string {
	return fmt.Sprintf("%s/command/%s", TopicPrefix, action)
}

// SystemStatus returns the topic for panel online/offline status.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllCommands returns a wildcard matching every command topic.
func (Topics) AllCommands() string {
	return TopicPrefix + "/command/+"
}

// CommandAction extracts the action from a command topic.
// It reports false for topics outside earpanel/command/.
func (Topics) CommandAction(topic string) (string, bool) {
	const prefix = TopicPrefix + "/command/"
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return "", false
	}
	return topic[len(prefix):], true
}
