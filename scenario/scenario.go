// Package scenario replays scripted sessions from YAML files.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Step actions.
const (
	ActionPlace         = "place"
	ActionConnect       = "connect"
	ActionDeleteStation = "delete-station"
	ActionDeleteLine    = "delete-line"
	ActionTool          = "tool"
	ActionClick         = "click"
	ActionRun           = "run"
)

// DefaultFrameMs is the frame length used by run steps without dtMs.
const DefaultFrameMs = 16

// Scenario is a scripted session.
type Scenario struct {
	Name  string   `yaml:"name"`
	Guest *bool    `yaml:"guest"`
	Seed  uint64   `yaml:"seed"`
	Money *float64 `yaml:"money"`
	Steps []Step   `yaml:"steps"`

	Expect *Expect `yaml:"expect"`
}

// Step is one scripted action. Stations and lines are referred to by the
// zero-based order in which the scenario created them.
type Step struct {
	Action  string  `yaml:"action"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Station *int    `yaml:"station"`
	From    *int    `yaml:"from"`
	To      *int    `yaml:"to"`
	Line    *int    `yaml:"line"`
	Tool    string  `yaml:"tool"`
	Frames  int     `yaml:"frames"`
	DtMs    float64 `yaml:"dtMs"`
}

// Expect holds optional assertions on the final state.
type Expect struct {
	Money            *float64 `yaml:"money"`
	Stations         *int     `yaml:"stations"`
	Lines            *int     `yaml:"lines"`
	Trains           *int     `yaml:"trains"`
	RevenuePerSecond *float64 `yaml:"revenuePerSecond"`
}

// IsGuest reports whether the scenario runs without persistence. Scenarios
// are guest runs unless they say otherwise.
func (s *Scenario) IsGuest() bool {
	return s.Guest == nil || *s.Guest
}

// Load reads a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks that every step carries the fields its action needs.
func (s *Scenario) Validate() error {
	if s.Money != nil && *s.Money < 0 {
		return fmt.Errorf("money must not be negative")
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, st.Action, err)
		}
	}
	return nil
}

func (st Step) validate() error {
	switch st.Action {
	case ActionPlace, ActionClick:
	case ActionConnect:
		if st.From == nil || st.To == nil {
			return fmt.Errorf("from and to are required")
		}
	case ActionDeleteStation:
		if st.Station == nil {
			return fmt.Errorf("station is required")
		}
	case ActionDeleteLine:
		if st.Line == nil {
			return fmt.Errorf("line is required")
		}
	case ActionTool:
		if st.Tool == "" {
			return fmt.Errorf("tool is required")
		}
	case ActionRun:
		if st.Frames < 0 || st.DtMs < 0 {
			return fmt.Errorf("frames and dtMs must not be negative")
		}
	case "":
		return fmt.Errorf("action is required")
	default:
		return fmt.Errorf("unknown action")
	}
	return nil
}
