package control

// Publisher abstracts the outbound broker surface used by the business
// handlers. *mqtt.Client satisfies it; tests substitute a recorder.
type Publisher interface {
	// Publish sends a message to the broker.
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Telemetry is inbound-only, so everything the control plane publishes
// is at-least-once.
const qosAtLeastOnce byte = 1
