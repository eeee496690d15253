package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smartbin-iot/smartbin-core/internal/bin"
	"github.com/smartbin-iot/smartbin-core/internal/credential"
	"github.com/smartbin-iot/smartbin-core/internal/eventlog"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/logging"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/mqtt"
)

// Resolver decides credential scans. Every scan is resolved against the
// stores at decision time - there is no cache, so a revoked credential is
// denied on its very next use.
type Resolver struct {
	bins        bin.Repository
	credentials credential.Repository
	events      eventlog.Repository
	publisher   Publisher
	topics      mqtt.Topics
	logger      *logging.Logger
}

// NewResolver creates a resolver over the given stores and publisher.
func NewResolver(
	bins bin.Repository,
	credentials credential.Repository,
	events eventlog.Repository,
	publisher Publisher,
	logger *logging.Logger,
) *Resolver {
	return &Resolver{
		bins:        bins,
		credentials: credentials,
		events:      events,
		publisher:   publisher,
		logger:      logger.With("component", "resolver"),
	}
}

// HandleScan is the dispatcher handler for rfid_check messages.
//
// A scan is granted when the bin exists and the credential is registered
// and active; the device then receives an open command at QoS 1. Every
// other outcome is a denial: the bin gets an unauthorized-access alert
// and the outcome is recorded in the event log either way. A duplicate
// scan is just another scan - each one is decided independently.
func (r *Resolver) HandleScan(ctx context.Context, binID, _ string, payload []byte) error {
	var msg mqtt.RFIDCheckMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if msg.UID == "" {
		return fmt.Errorf("%w: empty uid", ErrMalformedPayload)
	}

	if _, err := r.bins.GetByID(ctx, binID); err != nil {
		if errors.Is(err, bin.ErrBinNotFound) {
			r.logger.Warn("scan from unprovisioned bin", "bin_id", binID, "uid", msg.UID)
			return nil
		}
		return fmt.Errorf("loading bin: %w", err)
	}

	cred, err := r.credentials.GetByUID(ctx, msg.UID)
	switch {
	case errors.Is(err, credential.ErrNotFound):
		return r.deny(ctx, binID, msg.UID, nil, "unknown credential")
	case err != nil:
		return fmt.Errorf("resolving credential: %w", err)
	case !cred.Active:
		return r.deny(ctx, binID, msg.UID, &cred.Holder, "credential inactive")
	}

	return r.grant(ctx, binID, cred)
}

// grant publishes an open command and records the access.
func (r *Resolver) grant(ctx context.Context, binID string, cred *credential.Credential) error {
	cmd := mqtt.CommandMessage{
		Action: mqtt.ActionOpen,
		Reason: mqtt.ReasonRFIDAuthorized + ":" + cred.Holder,
		TS:     mqtt.Timestamp(),
	}
	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encoding command: %w", err)
	}

	if err := r.publisher.Publish(r.topics.Command(binID), body, qosAtLeastOnce, false); err != nil {
		return fmt.Errorf("publishing command: %w", err)
	}

	r.logger.Info("access granted", "bin_id", binID, "uid", cred.UID, "holder", cred.Holder)

	entry := &eventlog.Entry{
		BinID:   binID,
		Event:   eventlog.EventAccessGranted,
		UID:     &cred.UID,
		Holder:  &cred.Holder,
		Success: true,
		Message: "lid open commanded",
	}
	if err := r.events.Append(ctx, entry); err != nil {
		// The command is already on the wire; a logging failure must not
		// convert a granted access into a handler error loop.
		r.logger.Error("recording access grant failed", "bin_id", binID, "error", err)
	}
	return nil
}

// deny publishes an unauthorized-access alert and records the denial.
func (r *Resolver) deny(ctx context.Context, binID, uid string, holder *string, reason string) error {
	alert := mqtt.AlertMessage{
		Type:    mqtt.AlertUnauthorizedAccess,
		Message: fmt.Sprintf("access denied for uid %s: %s", uid, reason),
		TS:      mqtt.Timestamp(),
	}
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encoding alert: %w", err)
	}

	if err := r.publisher.Publish(r.topics.Alert(binID), body, qosAtLeastOnce, false); err != nil {
		return fmt.Errorf("publishing alert: %w", err)
	}

	r.logger.Warn("access denied", "bin_id", binID, "uid", uid, "reason", reason)

	entry := &eventlog.Entry{
		BinID:   binID,
		Event:   eventlog.EventAccessDenied,
		UID:     &uid,
		Holder:  holder,
		Success: false,
		Message: reason,
	}
	if err := r.events.Append(ctx, entry); err != nil {
		r.logger.Error("recording access denial failed", "bin_id", binID, "error", err)
	}
	return nil
}
