package mqtt

import "fmt"

// TopicNamespace is the root of the Smart Bin topic hierarchy.
// All topics follow the shape: smartbin/{binId}/{class}[/{subclass}]
const TopicNamespace = "smartbin"

// Topics provides builders for Smart Bin MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	cmdTopic := topics.Command("bin-001")
//	// Returns: "smartbin/bin-001/cmd"
type Topics struct{}

// Telemetry returns the fill-level telemetry topic for a bin.
// Published by the device at QoS 0, not retained.
//
// Example: smartbin/bin-001/data/level
func (Topics) Telemetry(binID string) string {
	return fmt.Sprintf("%s/%s/data/level", TopicNamespace, binID)
}

// RFIDCheck returns the credential-scan topic for a bin.
// Published by the device at QoS 1.
//
// Example: smartbin/bin-001/rfid_check
func (Topics) RFIDCheck(binID string) string {
	return fmt.Sprintf("%s/%s/rfid_check", TopicNamespace, binID)
}

// Command returns the open/close command topic for a bin.
// Published by the backend at QoS 1.
//
// Example: smartbin/bin-001/cmd
func (Topics) Command(binID string) string {
	return fmt.Sprintf("%s/%s/cmd", TopicNamespace, binID)
}

// Config returns the configuration topic for a bin.
// Published by the backend at QoS 1, retained, so a reconnecting device
// receives the latest configuration immediately.
//
// Example: smartbin/bin-001/config
func (Topics) Config(binID string) string {
	return fmt.Sprintf("%s/%s/config", TopicNamespace, binID)
}

// Alert returns the alert topic for a bin.
// Published by the backend at QoS 1.
//
// Example: smartbin/bin-001/alert
func (Topics) Alert(binID string) string {
	return fmt.Sprintf("%s/%s/alert", TopicNamespace, binID)
}

// Status returns the presence topic for a bin. The payload is the literal
// token "online" or "offline"; the device registers "offline" as its
// Last Will on this topic.
//
// Example: smartbin/bin-001/status
func (Topics) Status(binID string) string {
	return fmt.Sprintf("%s/%s/status", TopicNamespace, binID)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllTelemetry returns a pattern matching fill-level telemetry for all bins.
//
// Pattern: smartbin/+/data/+
func (Topics) AllTelemetry() string {
	return fmt.Sprintf("%s/+/data/+", TopicNamespace)
}

// AllRFIDChecks returns a pattern matching credential scans for all bins.
//
// Pattern: smartbin/+/rfid_check
func (Topics) AllRFIDChecks() string {
	return fmt.Sprintf("%s/+/rfid_check", TopicNamespace)
}

// AllStatus returns a pattern matching presence messages for all bins.
//
// Pattern: smartbin/+/status
func (Topics) AllStatus() string {
	return fmt.Sprintf("%s/+/status", TopicNamespace)
}

// AllTopics returns a pattern matching all Smart Bin topics.
// Use with caution - this receives ALL traffic, including the backend's
// own outbound commands, configs, and alerts.
//
// Pattern: smartbin/#
func (Topics) AllTopics() string {
	return TopicNamespace + "/#"
}
