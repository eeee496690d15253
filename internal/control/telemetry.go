package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smartbin-iot/smartbin-core/internal/bin"
	"github.com/smartbin-iot/smartbin-core/internal/eventlog"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/logging"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/mqtt"
)

// alertLevelPercent is the fill percentage at or above which every
// reading raises a bin-full alert. Alerting repeats on each qualifying
// reading; collection staff treat silence as "no longer full".
const alertLevelPercent = 80

// MetricsWriter receives time-series points for accepted readings and
// presence transitions. *influxdb.Client satisfies it.
type MetricsWriter interface {
	WriteFillLevel(binID string, levelPercent int, distanceCM float64)
	WritePresence(binID string, online bool)
}

// Engine validates fill-level telemetry and applies the bin-full rule.
type Engine struct {
	bins      bin.Repository
	events    eventlog.Repository
	publisher Publisher
	metrics   MetricsWriter // nil when the time-series store is disabled
	topics    mqtt.Topics
	logger    *logging.Logger
}

// NewEngine creates a telemetry engine. metrics may be nil.
func NewEngine(
	bins bin.Repository,
	events eventlog.Repository,
	publisher Publisher,
	metrics MetricsWriter,
	logger *logging.Logger,
) *Engine {
	return &Engine{
		bins:      bins,
		events:    events,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With("component", "telemetry"),
	}
}

// HandleReading is the dispatcher handler for data messages.
//
// The reading is validated against the bin's stored capacity, the bin
// record is updated unconditionally (last writer wins), and a level at
// or above alertLevelPercent raises a bin-full alert - on this reading
// and on every later one that still qualifies.
func (e *Engine) HandleReading(ctx context.Context, binID, subclass string, payload []byte) error {
	if subclass != "level" {
		e.logger.Warn("dropping unknown data subclass", "bin_id", binID, "subclass", subclass)
		return nil
	}

	var msg mqtt.TelemetryMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	b, err := e.bins.GetByID(ctx, binID)
	if err != nil {
		if errors.Is(err, bin.ErrBinNotFound) {
			e.logger.Warn("telemetry from unprovisioned bin", "bin_id", binID)
			return nil
		}
		return fmt.Errorf("loading bin: %w", err)
	}

	if !bin.ValidReading(msg.CM, b.CapacityCM) {
		e.logger.Warn("dropping implausible reading",
			"bin_id", binID, "cm", msg.CM, "capacity_cm", b.CapacityCM)
		return nil
	}

	// The distance is the measurement; the percentage is derived here
	// from the stored capacity rather than trusted from the device,
	// which may be running an older capacity.
	level := bin.FillPercent(msg.CM, b.CapacityCM)

	if err := e.bins.UpdateTelemetry(ctx, binID, level, msg.CM); err != nil {
		return fmt.Errorf("storing reading: %w", err)
	}

	if e.metrics != nil {
		e.metrics.WriteFillLevel(binID, level, msg.CM)
	}

	e.logger.Debug("reading stored", "bin_id", binID, "level", level, "cm", msg.CM)

	if level >= alertLevelPercent {
		return e.alertFull(ctx, binID, level, msg.CM)
	}
	return nil
}

// alertFull publishes a bin-full alert and records it.
func (e *Engine) alertFull(ctx context.Context, binID string, level int, distanceCM float64) error {
	alert := mqtt.AlertMessage{
		Type:    mqtt.AlertBinFull,
		Message: fmt.Sprintf("bin at %d%% capacity", level),
		TS:      mqtt.Timestamp(),
	}
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encoding alert: %w", err)
	}

	if err := e.publisher.Publish(e.topics.Alert(binID), body, qosAtLeastOnce, false); err != nil {
		return fmt.Errorf("publishing alert: %w", err)
	}

	e.logger.Warn("bin full", "bin_id", binID, "level", level)

	entry := &eventlog.Entry{
		BinID:        binID,
		Event:        eventlog.EventBinFull,
		LevelPercent: &level,
		DistanceCM:   &distanceCM,
		Success:      true,
		Message:      alert.Message,
	}
	if err := e.events.Append(ctx, entry); err != nil {
		e.logger.Error("recording bin-full event failed", "bin_id", binID, "error", err)
	}
	return nil
}
