package engine

import (
	"fmt"
	"strings"
)

// Phase is the engine's position in the Shuffle -> Sort -> Traverse cycle.
type Phase int

const (
	PhaseShuffle Phase = iota
	PhaseSort
	PhaseTraverse
	PhaseDone
)

var phaseNames = [...]string{"shuffle", "sort", "traverse", "done"}

func (p Phase) String() string {
	if !p.Valid() {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Valid reports whether p is a declared phase.
func (p Phase) Valid() bool {
	return p >= PhaseShuffle && p <= PhaseDone
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid phase %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase parses a phase name.
func ParsePhase(s string) (Phase, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}
	return PhaseShuffle, fmt.Errorf("unknown phase %q", s)
}

// Latches are the one-shot phase-completion flags. Each is set when its
// phase completes and cleared by the first Trigger* call that reads it.
type Latches struct {
	Done     bool `json:"done"`
	Shuffle  bool `json:"shuffle"`
	Sort     bool `json:"sort"`
	Traverse bool `json:"traverse"`
}
