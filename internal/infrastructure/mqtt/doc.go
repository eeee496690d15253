// Package mqtt provides the transport client shared by the Smart Bin
// control plane and the bin device firmware.
//
// It wraps eclipse/paho.mqtt.golang with:
//   - Connection management and automatic reconnection with backoff
//   - Last Will registration for presence detection
//   - Subscription tracking with restoration after reconnect
//   - Publish/subscribe with timeouts and panic-recovering handlers
//   - Topic builders and wire payload types for the smartbin/{id}/...
//     hierarchy
//
// Delivery semantics are at-least-once at best (QoS 1); both sides of the
// protocol are written to survive message loss, duplication, and
// reordering across reconnects.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT, &mqtt.Will{
//	    Topic:   mqtt.Topics{}.Status("bin-001"),
//	    Payload: mqtt.StatusOffline,
//	    QoS:     1,
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package mqtt
