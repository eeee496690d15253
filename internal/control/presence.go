package control

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smartbin-iot/smartbin-core/internal/bin"
	"github.com/smartbin-iot/smartbin-core/internal/eventlog"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/logging"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/mqtt"
)

// Tracker maintains per-bin presence from status messages. The broker's
// last-will delivery makes offline detection work even when a device
// dies without saying goodbye.
type Tracker struct {
	bins    bin.Repository
	events  eventlog.Repository
	metrics MetricsWriter // nil when the time-series store is disabled
	logger  *logging.Logger
}

// NewTracker creates a presence tracker. metrics may be nil.
func NewTracker(bins bin.Repository, events eventlog.Repository, metrics MetricsWriter, logger *logging.Logger) *Tracker {
	return &Tracker{
		bins:    bins,
		events:  events,
		metrics: metrics,
		logger:  logger.With("component", "presence"),
	}
}

// HandleStatus is the dispatcher handler for status messages.
//
// The payload is the literal token "online" or "offline", tolerating
// surrounding whitespace. Anything else is logged and dropped.
func (t *Tracker) HandleStatus(ctx context.Context, binID, _ string, payload []byte) error {
	token := strings.TrimSpace(string(payload))

	var online bool
	switch token {
	case mqtt.StatusOnline:
		online = true
	case mqtt.StatusOffline:
		online = false
	default:
		t.logger.Warn("dropping unrecognised status token", "bin_id", binID, "token", token)
		return nil
	}

	if err := t.bins.UpdatePresence(ctx, binID, online); err != nil {
		if errors.Is(err, bin.ErrBinNotFound) {
			t.logger.Warn("status from unprovisioned bin", "bin_id", binID, "token", token)
			return nil
		}
		return fmt.Errorf("storing presence: %w", err)
	}

	if t.metrics != nil {
		t.metrics.WritePresence(binID, online)
	}

	event := eventlog.EventPresenceOffline
	if online {
		event = eventlog.EventPresenceOnline
	}
	t.logger.Info("presence updated", "bin_id", binID, "online", online)

	entry := &eventlog.Entry{
		BinID:   binID,
		Event:   event,
		Success: true,
		Message: token,
	}
	if err := t.events.Append(ctx, entry); err != nil {
		t.logger.Error("recording presence event failed", "bin_id", binID, "error", err)
	}
	return nil
}
