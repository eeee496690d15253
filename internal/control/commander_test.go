package control

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/smartbin-iot/smartbin-core/internal/bin"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/mqtt"
)

func TestCommanderSend(t *testing.T) {
	bins := newMockBinRepo(testBinRecord("bin-001"))
	events := &mockEventRepo{}
	pub := &mockPublisher{}

	c := NewCommander(bins, events, pub, testLogger())

	if err := c.Send(context.Background(), "bin-001", "open"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	msgs := pub.all()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	if msgs[0].topic != "smartbin/bin-001/cmd" || msgs[0].qos != 1 {
		t.Errorf("published to %q at qos %d", msgs[0].topic, msgs[0].qos)
	}

	var cmd mqtt.CommandMessage
	if err := json.Unmarshal(msgs[0].payload, &cmd); err != nil {
		t.Fatalf("unmarshalling command: %v", err)
	}
	if cmd.Action != mqtt.ActionOpen || cmd.Reason != mqtt.ReasonRemote {
		t.Errorf("command = %q/%q, want open/remote", cmd.Action, cmd.Reason)
	}
}

func TestCommanderInvalidAction(t *testing.T) {
	c := NewCommander(newMockBinRepo(testBinRecord("bin-001")), &mockEventRepo{}, &mockPublisher{}, testLogger())

	err := c.Send(context.Background(), "bin-001", "eject")
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Send(eject) error = %v, want ErrInvalidAction", err)
	}
}

func TestCommanderUnknownBin(t *testing.T) {
	c := NewCommander(newMockBinRepo(), &mockEventRepo{}, &mockPublisher{}, testLogger())

	err := c.Send(context.Background(), "ghost", "close")
	if !errors.Is(err, bin.ErrBinNotFound) {
		t.Errorf("Send(unknown bin) error = %v, want ErrBinNotFound", err)
	}
}
