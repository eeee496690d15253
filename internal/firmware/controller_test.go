package firmware

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestController(mode string, clock Clock) *AccessController {
	return NewAccessController(ControllerConfig{
		Mode:        mode,
		ThresholdCM: 30,
		Debounce:    2 * time.Second,
		AutoClose:   10 * time.Second,
		Clock:       clock,
	})
}

func TestAutoModeFirstTriggerOpensImmediately(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestController("AUTO", clock)

	// A single in-range reading is honoured straight away.
	if got := c.OnProximity(20); got != DecideOpen {
		t.Fatalf("first in-range reading decision = %v, want open", got)
	}
	if c.State() != LidOpening {
		t.Errorf("state = %v, want OPENING", c.State())
	}
}

func TestAutoModeDebounceSuppressesRapidRetriggers(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestController("AUTO", clock)

	// First trigger honoured; lid cycles back to closed quickly.
	if got := c.OnProximity(20); got != DecideOpen {
		t.Fatalf("first trigger decision = %v, want open", got)
	}
	c.Opened()
	c.OnCommand("close")
	c.Closed()

	// A trigger inside the debounce interval is not honoured.
	clock.advance(1 * time.Second)
	if got := c.OnProximity(20); got != DecideNothing {
		t.Fatalf("trigger at 1s decision = %v, want nothing", got)
	}
	if c.State() != LidClosed {
		t.Fatalf("state = %v, want CLOSED", c.State())
	}

	// At exactly the debounce interval the next trigger is honoured.
	clock.advance(1 * time.Second)
	if got := c.OnProximity(20); got != DecideOpen {
		t.Errorf("trigger at 2s decision = %v, want open", got)
	}
}

func TestAutoModeOutOfRangeNeverTriggers(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestController("AUTO", clock)

	for i := 0; i < 5; i++ {
		clock.advance(time.Second)
		if got := c.OnProximity(100); got != DecideNothing {
			t.Fatalf("out-of-range decision = %v, want nothing", got)
		}
	}
	if c.State() != LidClosed {
		t.Fatalf("state = %v, want CLOSED", c.State())
	}

	// Out-of-range readings do not consume the debounce window.
	if got := c.OnProximity(20); got != DecideOpen {
		t.Errorf("in-range after misses = %v, want open", got)
	}
}

func TestAuthModeIgnoresProximity(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestController("AUTH", clock)

	for i := 0; i < 10; i++ {
		clock.advance(time.Second)
		if got := c.OnProximity(5); got != DecideNothing {
			t.Fatalf("AUTH proximity decision = %v, want nothing", got)
		}
	}
	if c.State() != LidClosed {
		t.Errorf("state = %v, want CLOSED", c.State())
	}
}

func TestCommandOpensInAuthMode(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestController("AUTH", clock)

	if got := c.OnCommand("open"); got != DecideOpen {
		t.Fatalf("OnCommand(open) = %v, want open", got)
	}
	c.Opened()
	if c.State() != LidOpen {
		t.Errorf("state = %v, want OPEN", c.State())
	}

	if got := c.OnCommand("close"); got != DecideClose {
		t.Fatalf("OnCommand(close) = %v, want close", got)
	}
	c.Closed()
	if c.State() != LidClosed {
		t.Errorf("state = %v, want CLOSED", c.State())
	}
}

func TestCommandIgnoredInWrongState(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestController("AUTO", clock)

	// Close while already closed.
	if got := c.OnCommand("close"); got != DecideNothing {
		t.Errorf("OnCommand(close) while closed = %v, want nothing", got)
	}

	// Open while already open.
	c.OnCommand("open")
	c.Opened()
	if got := c.OnCommand("open"); got != DecideNothing {
		t.Errorf("OnCommand(open) while open = %v, want nothing", got)
	}

	// Unknown action.
	if got := c.OnCommand("eject"); got != DecideNothing {
		t.Errorf("OnCommand(eject) = %v, want nothing", got)
	}
}

func TestAutoCloseDeadline(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestController("AUTO", clock)

	c.OnCommand("open")
	c.Opened()

	// Before the window elapses nothing happens.
	clock.advance(9 * time.Second)
	if got := c.Tick(); got != DecideNothing {
		t.Fatalf("Tick() at 9s = %v, want nothing", got)
	}

	clock.advance(1 * time.Second)
	if got := c.Tick(); got != DecideClose {
		t.Fatalf("Tick() at 10s = %v, want close", got)
	}
	if c.State() != LidClosing {
		t.Errorf("state = %v, want CLOSING", c.State())
	}

	c.Closed()
	if got := c.Tick(); got != DecideNothing {
		t.Errorf("Tick() after close = %v, want nothing", got)
	}
}

func TestAbortRevertsTransitionalState(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestController("AUTO", clock)

	// Failed open: lid is physically still closed.
	c.OnCommand("open")
	c.Abort()
	if c.State() != LidClosed {
		t.Errorf("state after aborted open = %v, want CLOSED", c.State())
	}

	// Failed close: lid is physically still open.
	c.OnCommand("open")
	c.Opened()
	clock.advance(10 * time.Second)
	c.Tick()
	c.Abort()
	if c.State() != LidOpen {
		t.Errorf("state after aborted close = %v, want OPEN", c.State())
	}
}

func TestSetModeRoundTripKeepsProximityWorking(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestController("AUTO", clock)

	// Readings while in AUTH are ignored and never count as triggers.
	c.SetMode("AUTH")
	if got := c.OnProximity(20); got != DecideNothing {
		t.Fatalf("AUTH reading decision = %v, want nothing", got)
	}

	// Back in AUTO, the first reading is honoured immediately.
	c.SetMode("AUTO")
	if got := c.OnProximity(20); got != DecideOpen {
		t.Errorf("decision after mode round trip = %v, want open", got)
	}
}

func TestSetThreshold(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestController("AUTO", clock)

	c.SetThreshold(10)

	// 20cm was in range under the old threshold, not under the new one.
	if got := c.OnProximity(20); got != DecideNothing {
		t.Fatalf("decision with tightened threshold = %v, want nothing", got)
	}
	if got := c.OnProximity(5); got != DecideOpen {
		t.Errorf("in-range decision = %v, want open", got)
	}
}
