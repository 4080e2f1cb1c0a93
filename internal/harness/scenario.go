package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted editing session.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Templates selects the definition database: a builtin name, or a
	// .cue file or directory resolved against the scenario's directory.
	// Defaults to "rangers".
	Templates string `yaml:"templates,omitempty"`

	// Length is the scene playback end, in frames.
	Length float32 `yaml:"length"`

	// Node is the definition added under the root and selected. Without
	// it only the cut tracks are drawn.
	Node string `yaml:"node,omitempty"`

	// Clip overrides the node's time range as [start, end].
	Clip []float32 `yaml:"clip,omitempty"`

	Cuts         []float32 `yaml:"cuts,omitempty"`
	ResourceCuts []float32 `yaml:"resource_cuts,omitempty"`

	// Origin places the panel, as [x, y]. Defaults to [100, 50].
	Origin []float32 `yaml:"origin,omitempty"`

	// Frames are fed to the panel in order.
	Frames []Frame `yaml:"frames"`

	// Expect is checked against the final state. Unset entries are not
	// checked.
	Expect *Expect `yaml:"expect,omitempty"`

	// dir resolves relative template paths.
	dir string
}

// Frame is the input of one editor frame.
type Frame struct {
	// Pointer is press, hold, release or hover. Defaults to hover.
	Pointer string `yaml:"pointer,omitempty"`

	// At is the pointer position as [x, y].
	At []float32 `yaml:"at,omitempty"`

	Wheel float32 `yaml:"wheel,omitempty"`
	Ctrl  bool    `yaml:"ctrl,omitempty"`

	// Keys is a shortcut held this frame: ctrl+z or ctrl+y.
	Keys string `yaml:"keys,omitempty"`

	// Repeat runs the frame this many times. Defaults to 1.
	Repeat int `yaml:"repeat,omitempty"`
}

// Expect lists the checked outcomes of a scenario.
type Expect struct {
	Clip         []float32       `yaml:"clip,omitempty"`
	Cuts         []float32       `yaml:"cuts,omitempty"`
	ResourceCuts []float32       `yaml:"resource_cuts,omitempty"`
	Time         *float32        `yaml:"time,omitempty"`
	Zoom         *float32        `yaml:"zoom,omitempty"`
	History      *int            `yaml:"history,omitempty"`
	Curve        map[int]float32 `yaml:"curve,omitempty"` // sample index to value
}

// Pointer states.
const (
	PointerPress   = "press"
	PointerHold    = "hold"
	PointerRelease = "release"
	PointerHover   = "hover"
)

// Shortcut keys.
const (
	KeysUndo = "ctrl+z"
	KeysRedo = "ctrl+y"
)

// DefaultTemplates is the database used when a scenario names none.
const DefaultTemplates = "rangers"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	sc.dir = filepath.Dir(path)
	return sc, nil
}

// ParseScenario parses scenario YAML. Relative template paths resolve
// against the working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "frame:" vs "frames:"
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if sc.Templates == "" {
		sc.Templates = DefaultTemplates
	}
	return &sc, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Length <= 0 {
		return fmt.Errorf("length must be positive")
	}
	if len(s.Frames) == 0 {
		return fmt.Errorf("frames list is required and must be non-empty")
	}
	if s.Clip != nil {
		if s.Node == "" {
			return fmt.Errorf("clip needs a node")
		}
		if len(s.Clip) != 2 || s.Clip[0] >= s.Clip[1] {
			return fmt.Errorf("clip must be [start, end] with start < end")
		}
	}
	if s.Origin != nil && len(s.Origin) != 2 {
		return fmt.Errorf("origin must be [x, y]")
	}

	for i, f := range s.Frames {
		if err := validateFrame(i, &f); err != nil {
			return err
		}
	}

	if e := s.Expect; e != nil {
		if e.Clip != nil && len(e.Clip) != 2 {
			return fmt.Errorf("expect.clip must be [start, end]")
		}
		if e.Clip != nil && s.Node == "" {
			return fmt.Errorf("expect.clip needs a node")
		}
		if e.History != nil && *e.History < 0 {
			return fmt.Errorf("expect.history must be non-negative")
		}
	}
	return nil
}

// validateFrame validates a single frame.
func validateFrame(index int, f *Frame) error {
	switch f.Pointer {
	case "", PointerPress, PointerHold, PointerRelease, PointerHover:
	default:
		return fmt.Errorf("frames[%d]: unknown pointer %q", index, f.Pointer)
	}
	if f.At != nil && len(f.At) != 2 {
		return fmt.Errorf("frames[%d]: at must be [x, y]", index)
	}
	if f.At == nil && f.Pointer != "" && f.Pointer != PointerHover {
		return fmt.Errorf("frames[%d]: %s needs at", index, f.Pointer)
	}
	switch f.Keys {
	case "", KeysUndo, KeysRedo:
	default:
		return fmt.Errorf("frames[%d]: unknown keys %q", index, f.Keys)
	}
	if f.Repeat < 0 {
		return fmt.Errorf("frames[%d]: repeat must be non-negative", index)
	}
	return nil
}
