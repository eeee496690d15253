package control

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/smartbin-iot/smartbin-core/internal/bin"
	"github.com/smartbin-iot/smartbin-core/internal/eventlog"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/logging"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/mqtt"
)

// Distributor applies configuration changes and pushes the device-relevant
// subset to the bin over a retained message, so a device that reconnects
// later still picks up the latest configuration.
type Distributor struct {
	bins      bin.Repository
	events    eventlog.Repository
	publisher Publisher
	topics    mqtt.Topics
	logger    *logging.Logger
}

// NewDistributor creates a configuration distributor.
func NewDistributor(bins bin.Repository, events eventlog.Repository, publisher Publisher, logger *logging.Logger) *Distributor {
	return &Distributor{
		bins:      bins,
		events:    events,
		publisher: publisher,
		logger:    logger.With("component", "distributor"),
	}
}

// Apply validates and persists a partial configuration update, then
// publishes the full resulting device configuration retained at QoS 1.
//
// The update is rejected before any store mutation when it carries no
// recognised fields; unknown JSON fields never reach this point because
// ConfigUpdate is the allow-list.
//
// Returns the updated bin record.
func (d *Distributor) Apply(ctx context.Context, binID string, update bin.ConfigUpdate) (*bin.Bin, error) {
	if update.IsEmpty() {
		return nil, bin.ErrEmptyUpdate
	}

	if err := d.bins.UpdateConfig(ctx, binID, update); err != nil {
		return nil, fmt.Errorf("storing config: %w", err)
	}

	updated, err := d.bins.GetByID(ctx, binID)
	if err != nil {
		return nil, fmt.Errorf("reloading bin: %w", err)
	}

	if err := d.publish(updated); err != nil {
		return nil, err
	}

	d.logger.Info("config distributed",
		"bin_id", binID, "mode", updated.Mode, "threshold_cm", updated.ThresholdCM)

	entry := &eventlog.Entry{
		BinID:   binID,
		Event:   eventlog.EventConfigUpdate,
		Success: true,
		Message: fmt.Sprintf("mode=%s threshold=%.1f", updated.Mode, updated.ThresholdCM),
	}
	if err := d.events.Append(ctx, entry); err != nil {
		d.logger.Error("recording config update failed", "bin_id", binID, "error", err)
	}

	return updated, nil
}

// Republish pushes a bin's current configuration without changing it.
// Used after provisioning so a new device has a retained config waiting.
func (d *Distributor) Republish(ctx context.Context, binID string) error {
	b, err := d.bins.GetByID(ctx, binID)
	if err != nil {
		return fmt.Errorf("loading bin: %w", err)
	}
	return d.publish(b)
}

// publish sends the device-relevant configuration subset, retained.
func (d *Distributor) publish(b *bin.Bin) error {
	msg := mqtt.ConfigMessage{
		Mode:      string(b.Mode),
		Threshold: b.ThresholdCM,
		TS:        mqtt.Timestamp(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := d.publisher.Publish(d.topics.Config(b.ID), body, qosAtLeastOnce, true); err != nil {
		return fmt.Errorf("publishing config: %w", err)
	}
	return nil
}
