package firmware

import (
	"sync"
	"time"
)

// LidState is the lid's position in its movement cycle.
type LidState int

// Lid states. OPENING and CLOSING cover the time the actuator is
// physically driving the lid.
const (
	LidClosed LidState = iota
	LidOpening
	LidOpen
	LidClosing
)

// String returns the state name for logging.
func (s LidState) String() string {
	switch s {
	case LidClosed:
		return "CLOSED"
	case LidOpening:
		return "OPENING"
	case LidOpen:
		return "OPEN"
	case LidClosing:
		return "CLOSING"
	default:
		return "UNKNOWN"
	}
}

// Decision is what the controller wants done with the lid.
type Decision int

// Decisions returned to the device loop, which owns the actuator.
const (
	DecideNothing Decision = iota
	DecideOpen
	DecideClose
)

// Clock abstracts time for deadline arithmetic, so debounce and
// auto-close behaviour is testable without sleeping.
type Clock interface {
	Now() time.Time
}

// systemClock is the production clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Behavioural timing defaults.
const (
	// defaultDebounce is the minimum interval between honoured proximity
	// triggers in AUTO mode. Stops one person dwelling at the bin from
	// retriggering the lid on every reading.
	defaultDebounce = 2 * time.Second

	// defaultAutoClose is how long the lid stays open before closing
	// on its own.
	defaultAutoClose = 10 * time.Second
)

// AccessController is the lid state machine. It decides when the lid
// should move; the device loop executes those decisions against the
// actuator and reports completion back via Opened and Closed.
//
// In AUTO mode a debounced proximity trigger opens the lid. In AUTH
// mode proximity is ignored and only a backend command opens it. Either
// way, an open lid closes again after the auto-close window.
type AccessController struct {
	mu sync.Mutex

	mode        string // "AUTO" or "AUTH"
	thresholdCM float64

	debounce  time.Duration
	autoClose time.Duration
	clock     Clock

	state         LidState
	lastTrigger   time.Time // time of the last honoured proximity trigger
	closeDeadline time.Time
}

// ControllerConfig carries the controller's tunables.
type ControllerConfig struct {
	Mode        string
	ThresholdCM float64
	Debounce    time.Duration
	AutoClose   time.Duration
	Clock       Clock
}

// NewAccessController creates a controller in the CLOSED state.
// Zero-valued timings and clock fall back to defaults.
func NewAccessController(cfg ControllerConfig) *AccessController {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.AutoClose <= 0 {
		cfg.AutoClose = defaultAutoClose
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	return &AccessController{
		mode:        cfg.Mode,
		thresholdCM: cfg.ThresholdCM,
		debounce:    cfg.Debounce,
		autoClose:   cfg.AutoClose,
		clock:       cfg.Clock,
	}
}

// State returns the current lid state.
func (c *AccessController) State() LidState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetMode applies a mode change from distributed configuration. The
// change affects the next proximity evaluation; a lid already moving
// finishes its transition.
func (c *AccessController) SetMode(mode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

// SetThreshold applies a proximity threshold change from distributed
// configuration.
func (c *AccessController) SetThreshold(cm float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thresholdCM = cm
}

// Mode returns the current operating mode.
func (c *AccessController) Mode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// OnProximity feeds one proximity reading into the state machine.
//
// In AUTO mode, an object closer than the threshold opens the lid
// immediately, unless a trigger was already honoured within the
// debounce interval - the first in-range reading is always honoured.
// Out-of-range readings never count as triggers. AUTH mode ignores
// readings entirely.
func (c *AccessController) OnProximity(distanceCM float64) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != "AUTO" || c.state != LidClosed {
		return DecideNothing
	}
	if distanceCM > c.thresholdCM {
		return DecideNothing
	}

	now := c.clock.Now()
	if !c.lastTrigger.IsZero() && now.Sub(c.lastTrigger) < c.debounce {
		return DecideNothing
	}

	c.lastTrigger = now
	c.state = LidOpening
	return DecideOpen
}

// OnCommand feeds a backend lid command into the state machine. Open is
// honoured in any mode; a command that does not apply to the current
// state is ignored.
func (c *AccessController) OnCommand(action string) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch action {
	case "open":
		if c.state == LidClosed {
			c.state = LidOpening
			return DecideOpen
		}
	case "close":
		if c.state == LidOpen {
			c.state = LidClosing
			return DecideClose
		}
	}
	return DecideNothing
}

// Tick checks time-based transitions; the device loop calls it every
// cycle. An open lid past its auto-close deadline starts closing.
func (c *AccessController) Tick() Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == LidOpen && !c.closeDeadline.IsZero() && !c.clock.Now().Before(c.closeDeadline) {
		c.state = LidClosing
		return DecideClose
	}
	return DecideNothing
}

// Opened reports that the actuator finished opening. The auto-close
// window starts now.
func (c *AccessController) Opened() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = LidOpen
	c.closeDeadline = c.clock.Now().Add(c.autoClose)
}

// Closed reports that the actuator finished closing.
func (c *AccessController) Closed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = LidClosed
	c.closeDeadline = time.Time{}
}

// Abort reverts an OPENING or CLOSING state after an actuator failure,
// back to the state the lid is physically still in.
func (c *AccessController) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case LidOpening:
		c.state = LidClosed
	case LidClosing:
		c.state = LidOpen
	}
}
