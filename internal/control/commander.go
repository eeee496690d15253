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

// Commander issues remote lid commands on behalf of an operator, outside
// the RFID flow.
type Commander struct {
	bins      bin.Repository
	events    eventlog.Repository
	publisher Publisher
	topics    mqtt.Topics
	logger    *logging.Logger
}

// NewCommander creates a remote commander.
func NewCommander(bins bin.Repository, events eventlog.Repository, publisher Publisher, logger *logging.Logger) *Commander {
	return &Commander{
		bins:      bins,
		events:    events,
		publisher: publisher,
		logger:    logger.With("component", "commander"),
	}
}

// Send publishes an open or close command for an existing bin at QoS 1
// with the remote reason, and records the action.
func (c *Commander) Send(ctx context.Context, binID, action string) error {
	if action != mqtt.ActionOpen && action != mqtt.ActionClose {
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	if _, err := c.bins.GetByID(ctx, binID); err != nil {
		return fmt.Errorf("loading bin: %w", err)
	}

	cmd := mqtt.CommandMessage{
		Action: action,
		Reason: mqtt.ReasonRemote,
		TS:     mqtt.Timestamp(),
	}
	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encoding command: %w", err)
	}

	if err := c.publisher.Publish(c.topics.Command(binID), body, qosAtLeastOnce, false); err != nil {
		return fmt.Errorf("publishing command: %w", err)
	}

	c.logger.Info("remote command sent", "bin_id", binID, "action", action)

	entry := &eventlog.Entry{
		BinID:   binID,
		Event:   eventlog.EventAccessGranted,
		Success: true,
		Message: "remote " + action,
	}
	if err := c.events.Append(ctx, entry); err != nil {
		c.logger.Error("recording remote command failed", "bin_id", binID, "error", err)
	}
	return nil
}
