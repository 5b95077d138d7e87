package scenario

import (
	"errors"
	"testing"
	"time"
)

func TestLoadScenario(t *testing.T) {
	sc, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if sc.Name != "example" {
		t.Fatalf("unexpected name %s", sc.Name)
	}
	if len(sc.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(sc.Phases))
	}
	if sc.Phases[0].Duration != 2*time.Second || sc.Phases[0].LeadKph == nil || *sc.Phases[0].LeadKph != 54 {
		t.Fatalf("unexpected first phase %+v", sc.Phases[0])
	}
	if sc.Phases[1].LeadKph != nil || sc.Phases[1].LaneChange != "left" {
		t.Fatalf("unexpected second phase %+v", sc.Phases[1])
	}
	if sc.Length() != 3*time.Second {
		t.Fatalf("length = %v, want 3s", sc.Length())
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("testdata/invalid.yaml"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if _, err := Parse([]byte("name: empty\n")); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid for no phases", err)
	}
	if _, err := Load("testdata/missing.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestPhaseAt(t *testing.T) {
	sc := Scenario{Phases: []Phase{{Name: "a", Duration: 2 * time.Second}, {Name: "b", Duration: time.Second}}}
	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 0},
		{1999 * time.Millisecond, 0},
		{2 * time.Second, 1},
		{3 * time.Second, 0},
		{5500 * time.Millisecond, 1},
	}
	for _, tc := range cases {
		if got := sc.PhaseAt(tc.elapsed); got != tc.want {
			t.Errorf("PhaseAt(%v) = %d, want %d", tc.elapsed, got, tc.want)
		}
	}
}

func TestBuiltIn(t *testing.T) {
	for name, sc := range BuiltIn() {
		t.Run(name, func(t *testing.T) {
			if sc.Description == "" {
				t.Fatalf("missing description")
			}
			if err := sc.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
	if _, ok := BuiltIn()["highway-overtake"]; !ok {
		t.Fatalf("highway-overtake not found")
	}
}
