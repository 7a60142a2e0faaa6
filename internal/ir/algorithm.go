package ir

import (
	"fmt"
	"strings"
)

// AlgorithmType tags one entry of the algorithm catalog.
// The declaration order is the catalog order.
type AlgorithmType int

const (
	AlgorithmBubble AlgorithmType = iota
	AlgorithmInsertion
	AlgorithmBinaryInsertion
	AlgorithmSelection
	AlgorithmDoubleSelection
	AlgorithmCocktailShaker
	AlgorithmMerge
	AlgorithmComb
	AlgorithmGnome
	AlgorithmOptimizedGnome
	AlgorithmOddEven
	AlgorithmShell
	AlgorithmHeap
	AlgorithmSmooth
	AlgorithmBitonic
	AlgorithmQuick
	AlgorithmBinaryQuick
	AlgorithmRadixLSD
	AlgorithmRadixMSD
	AlgorithmRadixLSD2
	AlgorithmRadixMSD2
	AlgorithmRadixLSD16
	AlgorithmRadixMSD16
	AlgorithmCycle
	AlgorithmBogo
	AlgorithmExchangeBogo
	AlgorithmStalin
)

// AlgorithmCount is the number of catalog entries.
const AlgorithmCount = 27

var algorithmKeys = [AlgorithmCount]string{
	"bubble",
	"insertion",
	"binary_insertion",
	"selection",
	"double_selection",
	"cocktail_shaker",
	"merge",
	"comb",
	"gnome",
	"optimized_gnome",
	"odd_even",
	"shell",
	"heap",
	"smooth",
	"bitonic",
	"quick",
	"binary_quick",
	"radix_lsd",
	"radix_msd",
	"radix_lsd_2",
	"radix_msd_2",
	"radix_lsd_16",
	"radix_msd_16",
	"cycle",
	"bogo",
	"exchange_bogo",
	"stalin",
}

// AllAlgorithms returns every algorithm tag in catalog order.
func AllAlgorithms() []AlgorithmType {
	out := make([]AlgorithmType, AlgorithmCount)
	for i := range out {
		out[i] = AlgorithmType(i)
	}
	return out
}

// String returns the snake_case key of the algorithm.
func (a AlgorithmType) String() string {
	if !a.Valid() {
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
	return algorithmKeys[a]
}

// Valid reports whether a is a catalog entry.
func (a AlgorithmType) Valid() bool {
	return a >= 0 && int(a) < AlgorithmCount
}

// MarshalText implements encoding.TextMarshaler.
func (a AlgorithmType) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid algorithm %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AlgorithmType) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithmType(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAlgorithmType parses an algorithm key. Hyphens are accepted in place of
// underscores and matching is case-insensitive, so "Radix-LSD-16" parses.
func ParseAlgorithmType(s string) (AlgorithmType, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, k := range algorithmKeys {
		if k == key {
			return AlgorithmType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm %q", s)
}

// Descriptor is the static metadata of a catalog entry.
//
// Precompute entries produce their whole log up front; live-step entries
// (Precompute=false) mutate the caller's array one event at a time.
type Descriptor struct {
	Name       string        `json:"name"`
	Type       AlgorithmType `json:"type"`
	Precompute bool          `json:"precompute"`
}

// Mode returns "precompute" or "live".
func (d Descriptor) Mode() string {
	if d.Precompute {
		return "precompute"
	}
	return "live"
}
