package firmware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/smartbin-iot/smartbin-core/internal/bin"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/config"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/logging"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/mqtt"
)

// Broker is the slice of the MQTT client the firmware uses. Tests
// substitute an in-memory recorder.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishString(topic string, payload string, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	SetOnConnect(callback func())
}

// TagReader is the hardware face of the RFID reader. Poll is
// non-blocking; ok is false when no tag is present.
type TagReader interface {
	Poll() (uid string, ok bool)
}

// inboundKind distinguishes broker messages queued for the loop.
type inboundKind int

const (
	inboundCommand inboundKind = iota
	inboundConfig
)

// inboundMsg is one broker message awaiting the loop goroutine. Handlers
// run on the broker client's goroutines; queueing keeps all state-machine
// and hardware access on the loop.
type inboundMsg struct {
	kind    inboundKind
	payload []byte
}

// inboundQueueSize bounds the loop's mailbox. Commands arrive at human
// rates; a full queue means the loop is wedged and dropping is the only
// safe response.
const inboundQueueSize = 16

// defaultTelemetryInterval is the period between fill-level publishes
// when configuration does not override it.
const defaultTelemetryInterval = 30 * time.Second

// defaultLoopTick paces the cooperative loop.
const defaultLoopTick = 50 * time.Millisecond

// Device is the bin-side firmware: one cooperative loop that polls the
// hardware, runs the lid state machine, and speaks the broker protocol.
type Device struct {
	cfg    config.DeviceConfig
	broker Broker
	topics mqtt.Topics
	logger *logging.Logger

	proximity *DistanceSensor
	fill      *DistanceSensor
	lid       *LidActuator
	reader    TagReader

	controller *AccessController
	inbound    chan inboundMsg
}

// NewDevice wires the firmware together. The controller starts from the
// local configuration; a retained config message from the control plane
// overrides mode and threshold as soon as the subscription is live.
func NewDevice(
	cfg config.DeviceConfig,
	broker Broker,
	proximity *DistanceSensor,
	fill *DistanceSensor,
	lid *LidActuator,
	reader TagReader,
	logger *logging.Logger,
) *Device {
	controller := NewAccessController(ControllerConfig{
		Mode:        cfg.Mode,
		ThresholdCM: cfg.ThresholdCM,
		Debounce:    cfg.Debounce,
		AutoClose:   cfg.AutoClose,
	})

	return &Device{
		cfg:        cfg,
		broker:     broker,
		logger:     logger.With("component", "device", "bin_id", cfg.BinID),
		proximity:  proximity,
		fill:       fill,
		lid:        lid,
		reader:     reader,
		controller: controller,
		inbound:    make(chan inboundMsg, inboundQueueSize),
	}
}

// Controller exposes the state machine, mainly for inspection.
func (d *Device) Controller() *AccessController {
	return d.controller
}

// Run subscribes, announces presence, and drives the cooperative loop
// until the context is cancelled. On every (re)connect the device
// republishes "online"; the retained config message is redelivered by
// the broker on resubscribe, so a reconnect also re-applies the latest
// configuration.
func (d *Device) Run(ctx context.Context) error {
	d.broker.SetOnConnect(func() {
		if err := d.broker.PublishString(d.topics.Status(d.cfg.BinID), mqtt.StatusOnline, 1, false); err != nil {
			d.logger.Error("publishing online status failed", "error", err)
		}
	})

	if err := d.broker.Subscribe(d.topics.Command(d.cfg.BinID), 1, d.enqueue(inboundCommand)); err != nil {
		return fmt.Errorf("subscribing to commands: %w", err)
	}
	if err := d.broker.Subscribe(d.topics.Config(d.cfg.BinID), 1, d.enqueue(inboundConfig)); err != nil {
		return fmt.Errorf("subscribing to config: %w", err)
	}

	if err := d.broker.PublishString(d.topics.Status(d.cfg.BinID), mqtt.StatusOnline, 1, false); err != nil {
		d.logger.Error("publishing online status failed", "error", err)
	}

	d.logger.Info("device loop starting", "mode", d.controller.Mode())

	tick := d.cfg.LoopTick
	if tick <= 0 {
		tick = defaultLoopTick
	}
	telemetryInterval := d.cfg.TelemetryInterval
	if telemetryInterval <= 0 {
		telemetryInterval = defaultTelemetryInterval
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	// First telemetry goes out on the first tick, not a full interval in.
	nextTelemetry := time.Now()

	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return ctx.Err()

		case msg := <-d.inbound:
			d.handleInbound(msg)

		case <-ticker.C:
			d.pollReader()
			d.pollProximity()
			d.execute(d.controller.Tick())

			if !time.Now().Before(nextTelemetry) {
				d.publishTelemetry()
				nextTelemetry = time.Now().Add(telemetryInterval)
			}
		}
	}
}

// shutdown announces a graceful offline. An ungraceful exit leaves the
// announcement to the broker's last-will delivery instead.
func (d *Device) shutdown() {
	if err := d.broker.PublishString(d.topics.Status(d.cfg.BinID), mqtt.StatusOffline, 1, false); err != nil {
		d.logger.Error("publishing offline status failed", "error", err)
	}
	d.logger.Info("device loop stopped")
}

// enqueue builds a broker handler that queues the payload for the loop,
// dropping when the mailbox is full.
func (d *Device) enqueue(kind inboundKind) mqtt.MessageHandler {
	return func(_ string, payload []byte) error {
		body := make([]byte, len(payload))
		copy(body, payload)
		select {
		case d.inbound <- inboundMsg{kind: kind, payload: body}:
		default:
			d.logger.Warn("dropping inbound message, queue full", "kind", int(kind))
		}
		return nil
	}
}

// handleInbound applies one queued broker message.
func (d *Device) handleInbound(msg inboundMsg) {
	switch msg.kind {
	case inboundCommand:
		var cmd mqtt.CommandMessage
		if err := json.Unmarshal(msg.payload, &cmd); err != nil {
			d.logger.Warn("dropping malformed command", "error", err)
			return
		}
		d.logger.Info("command received", "action", cmd.Action, "reason", cmd.Reason)
		d.execute(d.controller.OnCommand(cmd.Action))

	case inboundConfig:
		var cfg mqtt.ConfigMessage
		if err := json.Unmarshal(msg.payload, &cfg); err != nil {
			d.logger.Warn("dropping malformed config", "error", err)
			return
		}
		d.controller.SetMode(cfg.Mode)
		d.controller.SetThreshold(cfg.Threshold)
		d.logger.Info("config applied", "mode", cfg.Mode, "threshold_cm", cfg.Threshold)
	}
}

// pollReader forwards a scanned tag to the control plane. The device
// never decides access itself.
func (d *Device) pollReader() {
	uid, ok := d.reader.Poll()
	if !ok {
		return
	}

	msg := mqtt.RFIDCheckMessage{UID: uid, TS: mqtt.Timestamp()}
	body, err := json.Marshal(msg)
	if err != nil {
		d.logger.Error("encoding scan failed", "error", err)
		return
	}
	if err := d.broker.Publish(d.topics.RFIDCheck(d.cfg.BinID), body, 1, false); err != nil {
		d.logger.Error("publishing scan failed", "uid", uid, "error", err)
		return
	}
	d.logger.Info("scan forwarded", "uid", uid)
}

// pollProximity feeds one proximity reading into the state machine.
// Sensor faults are routine (lost echoes) and only logged at debug.
func (d *Device) pollProximity() {
	cm, err := d.proximity.ReadCM()
	if err != nil {
		if !errors.Is(err, ErrPulseTimeout) && !errors.Is(err, ErrOutOfRange) {
			d.logger.Warn("proximity read failed", "error", err)
		}
		return
	}
	d.execute(d.controller.OnProximity(cm))
}

// execute drives the actuator for a state-machine decision and reports
// the outcome back to the controller.
func (d *Device) execute(decision Decision) {
	switch decision {
	case DecideOpen:
		if err := d.lid.Open(); err != nil {
			d.logger.Error("opening lid failed", "error", err)
			d.controller.Abort()
			return
		}
		d.controller.Opened()
		d.logger.Info("lid opened")

	case DecideClose:
		if err := d.lid.Close(); err != nil {
			d.logger.Error("closing lid failed", "error", err)
			d.controller.Abort()
			return
		}
		d.controller.Closed()
		d.logger.Info("lid closed")
	}
}

// publishTelemetry reads the fill sensor and publishes one reading at
// QoS 0. A failed read skips the cycle; the next interval tries again.
func (d *Device) publishTelemetry() {
	cm, err := d.fill.ReadCM()
	if err != nil {
		d.logger.Warn("fill read failed", "error", err)
		return
	}
	if !bin.ValidReading(cm, d.cfg.CapacityCM) {
		d.logger.Warn("discarding implausible fill reading", "cm", cm)
		return
	}

	msg := mqtt.TelemetryMessage{
		Level: bin.FillPercent(cm, d.cfg.CapacityCM),
		CM:    cm,
		TS:    mqtt.Timestamp(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		d.logger.Error("encoding telemetry failed", "error", err)
		return
	}
	// Fire and forget; the next reading supersedes a lost one.
	if err := d.broker.Publish(d.topics.Telemetry(d.cfg.BinID), body, 0, false); err != nil {
		d.logger.Warn("publishing telemetry failed", "error", err)
		return
	}
	d.logger.Debug("telemetry published", "level", msg.Level, "cm", cm)
}
