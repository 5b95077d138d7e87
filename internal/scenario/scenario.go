// Package scenario describes synthetic drives and generates the vehicle
// snapshots and navigation fields they produce.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for scenarios that cannot be driven.
var ErrInvalid = errors.New("invalid scenario")

// Scenario is an ordered list of driving phases. The phases repeat once the
// last one has elapsed.
type Scenario struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Start       Start   `yaml:"start"`
	Seed        int64   `yaml:"seed,omitempty"`
	Noise       float64 `yaml:"noise,omitempty"`
	Phases      []Phase `yaml:"phases"`
}

// Start is the initial GPS position and heading.
type Start struct {
	Lat        float64 `yaml:"lat"`
	Lon        float64 `yaml:"lon"`
	HeadingDeg float64 `yaml:"heading_deg"`
}

// Phase is a stretch of road with constant driving conditions.
type Phase struct {
	Name           string        `yaml:"name"`
	Description    string        `yaml:"description,omitempty"`
	Duration       time.Duration `yaml:"duration"`
	EgoKph         float64       `yaml:"ego_kph"`
	LeadKph        *float64      `yaml:"lead_kph,omitempty"`
	LeadGapM       float64       `yaml:"lead_gap_m,omitempty"`
	LaneWidthLeft  float64       `yaml:"lane_width_left"`
	LaneWidthRight float64       `yaml:"lane_width_right"`
	LaneCount      int           `yaml:"lane_count"`
	RoadCategory   int           `yaml:"road_category"`
	LaneProb       float64       `yaml:"lane_prob"`
	Curvature      float64       `yaml:"curvature,omitempty"`
	LaneChange     string        `yaml:"lane_change,omitempty"`
	LeftBlindspot  bool          `yaml:"left_blindspot,omitempty"`
	RightBlindspot bool          `yaml:"right_blindspot,omitempty"`
	Disengaged     bool          `yaml:"disengaged,omitempty"`
	SpeedLimitKph  int           `yaml:"speed_limit_kph"`
	RoadName       string        `yaml:"road_name,omitempty"`
	Command        string        `yaml:"command,omitempty"`
	CommandArg     string        `yaml:"command_arg,omitempty"`
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML scenario.
func Parse(b []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every phase can be driven.
func (s *Scenario) Validate() error {
	if len(s.Phases) == 0 {
		return fmt.Errorf("%w: no phases", ErrInvalid)
	}
	for i, p := range s.Phases {
		switch {
		case p.Duration <= 0:
			return fmt.Errorf("%w: phase %d (%s) needs a positive duration", ErrInvalid, i, p.Name)
		case p.EgoKph < 0:
			return fmt.Errorf("%w: phase %d (%s) has negative speed", ErrInvalid, i, p.Name)
		case p.LaneProb < 0 || p.LaneProb > 1:
			return fmt.Errorf("%w: phase %d (%s) lane_prob outside [0,1]", ErrInvalid, i, p.Name)
		}
		switch p.LaneChange {
		case "", "none", "left", "right":
		default:
			return fmt.Errorf("%w: phase %d (%s) lane_change %q", ErrInvalid, i, p.Name, p.LaneChange)
		}
	}
	return nil
}

// Length is the duration of one pass through all phases.
func (s *Scenario) Length() time.Duration {
	var d time.Duration
	for _, p := range s.Phases {
		d += p.Duration
	}
	return d
}

// PhaseAt returns the index of the phase active after elapsed, wrapping
// around at the end of the scenario.
func (s *Scenario) PhaseAt(elapsed time.Duration) int {
	total := s.Length()
	if total <= 0 {
		return 0
	}
	elapsed %= total
	for i, p := range s.Phases {
		if elapsed < p.Duration {
			return i
		}
		elapsed -= p.Duration
	}
	return len(s.Phases) - 1
}
