package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sortstep/internal/ir"
	"github.com/roach88/sortstep/internal/testutil"
)

// Drive modes.
const (
	ModeSort  = "sort"
	ModeCycle = "cycle"
)

// Input kinds.
const (
	InputSorted      = "sorted"
	InputReversed    = "reversed"
	InputRandom      = "random"
	InputPermutation = "permutation"
	InputZeros       = "zeros"
)

// maxInputSize matches the engine's array bound.
const maxInputSize = 1000

// defaultMaxSteps bounds a run so a live strategy that never sorts cannot
// hang the harness.
const defaultMaxSteps = 200_000

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and its golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	// Algorithm is the catalog tag, e.g. "bubble" or "radix_msd_16".
	Algorithm string `yaml:"algorithm" json:"algorithm"`

	// Input is the starting array.
	Input InputSpec `yaml:"input" json:"input"`

	// Mode is "sort" (default) or "cycle".
	Mode string `yaml:"mode,omitempty" json:"mode,omitempty"`

	// Filter lists event types suppressed from the trace.
	Filter []string `yaml:"filter,omitempty" json:"filter,omitempty"`

	// Seed drives the shuffle animation and live-step strategies.
	Seed uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`

	// ShuffleSkip and TraverseSkip set the engine frame-skips (default 1).
	ShuffleSkip  int `yaml:"shuffle_skip,omitempty" json:"shuffle_skip,omitempty"`
	TraverseSkip int `yaml:"traverse_skip,omitempty" json:"traverse_skip,omitempty"`

	// MaxSteps bounds the number of stepping calls (default 200000).
	MaxSteps int `yaml:"max_steps,omitempty" json:"max_steps,omitempty"`

	// Assertions validate the trace and final state.
	Assertions []Assertion `yaml:"assertions" json:"assertions"`
}

// InputSpec is either an explicit list of values or a generated input.
//
// In YAML and CUE it is written as a list ([3, 1, 2]) or as an object
// ({kind: random, size: 50, seed: 4}).
type InputSpec struct {
	Values []int  `yaml:"values,omitempty" json:"values,omitempty"`
	Kind   string `yaml:"kind,omitempty" json:"kind,omitempty"`
	Size   int    `yaml:"size,omitempty" json:"size,omitempty"`
	Seed   uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

type inputSpecFields InputSpec

// UnmarshalYAML accepts a sequence of ints or a mapping.
func (in *InputSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var values []int
		if err := node.Decode(&values); err != nil {
			return fmt.Errorf("input: %w", err)
		}
		*in = InputSpec{Values: values}
		return nil
	}
	var fields inputSpecFields
	if err := node.Decode(&fields); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	*in = InputSpec(fields)
	return nil
}

// UnmarshalJSON accepts an array of ints or an object.
func (in *InputSpec) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var values []int
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return fmt.Errorf("input: %w", err)
		}
		*in = InputSpec{Values: values}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	var fields inputSpecFields
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	*in = InputSpec(fields)
	return nil
}

// Build returns the input array.
func (in InputSpec) Build() ([]int, error) {
	if in.Kind == "" {
		return append([]int{}, in.Values...), nil
	}
	switch in.Kind {
	case InputSorted:
		return testutil.Sorted(in.Size), nil
	case InputReversed:
		return testutil.Reversed(in.Size), nil
	case InputZeros:
		return testutil.Zeros(in.Size), nil
	case InputRandom:
		return testutil.Random(testutil.NewRand(in.Seed), in.Size), nil
	case InputPermutation:
		return testutil.Permutation(testutil.NewRand(in.Seed), in.Size), nil
	default:
		return nil, fmt.Errorf("unknown input kind %q", in.Kind)
	}
}

// LoadScenario reads and validates a scenario file. The format is chosen
// by extension: .yaml/.yml or .cue.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario *Scenario
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		scenario, err = parseYAMLScenario(data)
	case ".cue":
		scenario, err = parseCUEScenario(path, data)
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return scenario, nil
}

// ParseScenarioYAML parses and validates a YAML scenario.
func ParseScenarioYAML(data []byte) (*Scenario, error) {
	scenario, err := parseYAMLScenario(data)
	if err != nil {
		return nil, err
	}
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

func parseYAMLScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every scenario file in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".cue":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("duplicate scenario name %q in %s and %s", s.Name, prev, path)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, err := ir.ParseAlgorithmType(s.Algorithm); err != nil {
		return fmt.Errorf("algorithm: %w", err)
	}
	if err := validateInput(s.Input); err != nil {
		return err
	}
	if s.Mode != "" && s.Mode != ModeSort && s.Mode != ModeCycle {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeSort, ModeCycle, s.Mode)
	}
	for i, name := range s.Filter {
		if _, err := ir.ParseEventType(name); err != nil {
			return fmt.Errorf("filter[%d]: %w", i, err)
		}
	}
	if s.ShuffleSkip < 0 || s.TraverseSkip < 0 || s.MaxSteps < 0 {
		return fmt.Errorf("shuffle_skip, traverse_skip and max_steps must not be negative")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateInput(in InputSpec) error {
	if in.Kind == "" {
		if len(in.Values) > maxInputSize {
			return fmt.Errorf("input: %d values exceed %d", len(in.Values), maxInputSize)
		}
		return nil
	}
	if len(in.Values) > 0 {
		return fmt.Errorf("input: values and kind are mutually exclusive")
	}
	kinds := []string{InputSorted, InputReversed, InputRandom, InputPermutation, InputZeros}
	if !slices.Contains(kinds, in.Kind) {
		return fmt.Errorf("input: unknown kind %q", in.Kind)
	}
	if in.Size < 0 || in.Size > maxInputSize {
		return fmt.Errorf("input: size %d out of range [0, %d]", in.Size, maxInputSize)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFinalSorted:
	case AssertFinalArray:
		if a.Values == nil {
			return fmt.Errorf("assertions[%d]: values is required for final_array", index)
		}
	case AssertTraceCount:
		if _, err := ir.ParseEventType(a.Event); err != nil {
			return fmt.Errorf("assertions[%d]: trace_count: %w", index, err)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertTraceOrder, AssertTracePrefix:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for %s", index, a.Type)
		}
	case AssertPhaseOrder:
		if len(a.Phases) == 0 {
			return fmt.Errorf("assertions[%d]: phases list is required for phase_order", index)
		}
	case AssertTriggerCount:
		if !slices.Contains(latchNames, a.Latch) {
			return fmt.Errorf("assertions[%d]: latch must be one of %v", index, latchNames)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trigger_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
