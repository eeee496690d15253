package firmware

import (
	"errors"
	"testing"
	"time"
)

// stubPositioner records the call sequence.
type stubPositioner struct {
	calls     []string
	attachErr error
	moveErr   error
	lastAngle int
}

func (s *stubPositioner) Attach() error {
	s.calls = append(s.calls, "attach")
	return s.attachErr
}

func (s *stubPositioner) Move(angle int) error {
	s.calls = append(s.calls, "move")
	s.lastAngle = angle
	return s.moveErr
}

func (s *stubPositioner) Detach() error {
	s.calls = append(s.calls, "detach")
	return nil
}

func newTestActuator(p Positioner) *LidActuator {
	a := NewLidActuator(p)
	a.SetSettleDelay(0)
	return a
}

func TestOpenRunsFullCycle(t *testing.T) {
	p := &stubPositioner{}
	a := NewLidActuator(p)
	a.sleep = func(d time.Duration) {
		if d != defaultSettleDelay {
			t.Errorf("settled for %v, want %v", d, defaultSettleDelay)
		}
	}

	if err := a.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := []string{"attach", "move", "detach"}
	if len(p.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", p.calls, want)
	}
	for i := range want {
		if p.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", p.calls, want)
		}
	}
	if p.lastAngle != lidOpenAngle {
		t.Errorf("moved to %d, want %d", p.lastAngle, lidOpenAngle)
	}
}

func TestCloseMovesToClosedAngle(t *testing.T) {
	p := &stubPositioner{}
	a := newTestActuator(p)

	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if p.lastAngle != lidClosedAngle {
		t.Errorf("moved to %d, want %d", p.lastAngle, lidClosedAngle)
	}
}

func TestAttachFailureAbortsBeforeMove(t *testing.T) {
	p := &stubPositioner{attachErr: errors.New("no power")}
	a := newTestActuator(p)

	err := a.Open()
	if !errors.Is(err, ErrActuatorAttach) {
		t.Fatalf("Open() error = %v, want ErrActuatorAttach", err)
	}
	for _, call := range p.calls {
		if call == "move" {
			t.Error("lid must not move after a failed attach")
		}
	}
}

func TestMoveFailureDetaches(t *testing.T) {
	p := &stubPositioner{moveErr: errors.New("stalled")}
	a := newTestActuator(p)

	err := a.Open()
	if !errors.Is(err, ErrActuatorMove) {
		t.Fatalf("Open() error = %v, want ErrActuatorMove", err)
	}
	if p.calls[len(p.calls)-1] != "detach" {
		t.Error("servo should be de-energised after a failed move")
	}
}
