package overtake

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"drivelink/internal/telemetry"
)

// Mode is the operator-selected overtake mode.
type Mode int

const (
	ModeDisabled Mode = iota
	ModeManual
	ModeAuto
)

func (m Mode) String() string {
	switch m {
	case ModeManual:
		return "manual"
	case ModeAuto:
		return "auto"
	default:
		return "disabled"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMode accepts disabled/off/manual/auto or the numeric codes 0-2.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disabled", "off", "0":
		return ModeDisabled, nil
	case "manual", "1":
		return ModeManual, nil
	case "auto", "2":
		return ModeAuto, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return 0, fmt.Errorf("overtake mode %d out of range", n)
	}
	return 0, fmt.Errorf("unknown overtake mode %q", s)
}

// State is the lane change state as seen by the overtake logic.
type State int

const (
	StateDisabled State = iota
	StateMonitoring
	StateChanging
)

func (s State) String() string {
	switch s {
	case StateMonitoring:
		return "MONITORING"
	case StateChanging:
		return "CHANGING"
	default:
		return "DISABLED"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Blocking reasons reported outside the condition list.
const (
	ReasonDisabled = "Overtake disabled"
	ReasonChanging = "Lane change in progress"
)

// Actions attached to a recommendation.
const (
	ActionCommand = "command"
	ActionConfirm = "confirm"
)

// Recommendation is an overtake the advisor would start now. In auto mode
// the runner forwards it as a command; in manual mode it asks the driver to confirm.
type Recommendation struct {
	Direction string `json:"direction"`
	Action    string `json:"action"`
}

// Status is the result of one machine step.
type Status struct {
	State          State           `json:"state"`
	Mode           Mode            `json:"mode"`
	Conditions     []Condition     `json:"conditions,omitempty"`
	Verdict        Verdict         `json:"verdict"`
	Direction      string          `json:"direction,omitempty"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

// Options tunes the advisor part of the machine.
type Options struct {
	DebounceFrames int
	Cooldown       time.Duration
}

// Machine tracks DISABLED/MONITORING/CHANGING across ticks and debounces
// recommendations. It is owned by a single evaluation loop.
type Machine struct {
	debounceFrames int
	cooldown       time.Duration
	now            func() time.Time

	state       State
	debounce    int
	lastCommand map[telemetry.Direction]time.Time
}

// NewMachine returns a machine in the DISABLED state.
func NewMachine(opts Options) *Machine {
	if opts.DebounceFrames <= 0 {
		opts.DebounceFrames = 3
	}
	return &Machine{
		debounceFrames: opts.DebounceFrames,
		cooldown:       opts.Cooldown,
		now:            time.Now,
		lastCommand:    make(map[telemetry.Direction]time.Time),
	}
}

// State returns the state after the last step.
func (m *Machine) State() State { return m.state }

// Step advances the machine with the latest snapshot, mode and thresholds.
func (m *Machine) Step(s *telemetry.Snapshot, mode Mode, th Thresholds) Status {
	if mode == ModeDisabled {
		m.state = StateDisabled
		m.debounce = 0
		return Status{State: StateDisabled, Mode: mode, Verdict: Verdict{BlockingReason: ReasonDisabled}}
	}

	if state, dir := s.LaneChange(); state.InProgress() {
		m.state = StateChanging
		m.debounce = 0
		return Status{
			State:     StateChanging,
			Mode:      mode,
			Verdict:   Verdict{BlockingReason: ReasonChanging},
			Direction: dir.String(),
		}
	}

	m.state = StateMonitoring
	conds := Check(s, th)
	v := Evaluate(conds)
	return Status{
		State:          StateMonitoring,
		Mode:           mode,
		Conditions:     conds,
		Verdict:        v,
		Recommendation: m.advise(s, mode, th, v),
	}
}

// advise emits a recommendation once permission has held for the debounce
// window and a slow lead is worth passing, choosing a feasible side that is
// not cooling down.
func (m *Machine) advise(s *telemetry.Snapshot, mode Mode, th Thresholds, v Verdict) *Recommendation {
	if !v.CanOvertake {
		m.debounce = 0
		return nil
	}
	if holdReason(s) != "" {
		return nil
	}
	if !overtakeWanted(s, th) {
		m.debounce = 0
		return nil
	}
	m.debounce++
	if m.debounce < m.debounceFrames {
		return nil
	}

	dir, ok := preferredSide(s, th)
	if !ok {
		m.debounce = 0
		return nil
	}
	now := m.now()
	if m.coolingDown(dir, now) {
		other := dir.Opposite()
		if !sideFeasible(s, other, th) || m.coolingDown(other, now) {
			return nil
		}
		dir = other
	}
	m.lastCommand[dir] = now
	m.debounce = 0

	action := ActionConfirm
	if mode == ModeAuto {
		action = ActionCommand
	}
	return &Recommendation{Direction: dir.String(), Action: action}
}

func (m *Machine) coolingDown(dir telemetry.Direction, now time.Time) bool {
	last, ok := m.lastCommand[dir]
	return ok && now.Sub(last) < m.cooldown
}
