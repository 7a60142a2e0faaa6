package harness

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenarioYAML_ListInput(t *testing.T) {
	s, err := ParseScenarioYAML([]byte(`
name: list
description: explicit input
algorithm: insertion
input: [4, 2, 9]
assertions:
  - type: final_sorted
`))
	require.NoError(t, err)
	assert.Equal(t, "insertion", s.Algorithm)
	assert.Equal(t, []int{4, 2, 9}, s.Input.Values)
	assert.Empty(t, s.Input.Kind)

	input, err := s.Input.Build()
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2, 9}, input)
}

func TestParseScenarioYAML_GeneratedInput(t *testing.T) {
	s, err := ParseScenarioYAML([]byte(`
name: generated
description: generated input
algorithm: merge
input:
  kind: permutation
  size: 12
  seed: 5
mode: cycle
seed: 7
shuffle_skip: 2
assertions:
  - type: final_sorted
`))
	require.NoError(t, err)
	assert.Equal(t, InputSpec{Kind: InputPermutation, Size: 12, Seed: 5}, s.Input)
	assert.Equal(t, ModeCycle, s.Mode)
	assert.Equal(t, uint64(7), s.Seed)
	assert.Equal(t, 2, s.ShuffleSkip)

	a, err := s.Input.Build()
	require.NoError(t, err)
	b, err := s.Input.Build()
	require.NoError(t, err)
	assert.Len(t, a, 12)
	assert.Equal(t, a, b, "seeded input must be reproducible")
}

func TestParseScenarioYAML_UnknownField(t *testing.T) {
	_, err := ParseScenarioYAML([]byte(`
name: x
description: x
algorithm: bubble
input: []
flow_token: nope
assertions:
  - type: final_sorted
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenarioYAML_Validation(t *testing.T) {
	base := "name: x\ndescription: x\n"
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", "description: x\nalgorithm: bubble\ninput: []\nassertions: [{type: final_sorted}]", "name is required"},
		{"missing description", "name: x\nalgorithm: bubble\ninput: []\nassertions: [{type: final_sorted}]", "description is required"},
		{"unknown algorithm", base + "algorithm: timsort\ninput: []\nassertions: [{type: final_sorted}]", "algorithm"},
		{"bad mode", base + "algorithm: bubble\ninput: []\nmode: replay\nassertions: [{type: final_sorted}]", "mode must be"},
		{"bad filter", base + "algorithm: bubble\ninput: []\nfilter: [peek]\nassertions: [{type: final_sorted}]", "filter[0]"},
		{"negative skip", base + "algorithm: bubble\ninput: []\nshuffle_skip: -1\nassertions: [{type: final_sorted}]", "must not be negative"},
		{"no assertions", base + "algorithm: bubble\ninput: []\nassertions: []", "assertions list is required"},
		{"unknown kind", base + "algorithm: bubble\ninput: {kind: sawtooth, size: 3}\nassertions: [{type: final_sorted}]", "unknown kind"},
		{"size too large", base + "algorithm: bubble\ninput: {kind: zeros, size: 1001}\nassertions: [{type: final_sorted}]", "out of range"},
		{"values and kind", base + "algorithm: bubble\ninput: {kind: zeros, size: 2, values: [1]}\nassertions: [{type: final_sorted}]", "mutually exclusive"},
		{"final_array without values", base + "algorithm: bubble\ninput: []\nassertions: [{type: final_array}]", "values is required"},
		{"trace_count bad event", base + "algorithm: bubble\ninput: []\nassertions: [{type: trace_count, event: peek}]", "trace_count"},
		{"trace_order empty", base + "algorithm: bubble\ninput: []\nassertions: [{type: trace_order}]", "events list is required"},
		{"phase_order empty", base + "algorithm: bubble\ninput: []\nassertions: [{type: phase_order}]", "phases list is required"},
		{"bad latch", base + "algorithm: bubble\ninput: []\nassertions: [{type: trigger_count, latch: replay}]", "latch must be one of"},
		{"unknown assertion", base + "algorithm: bubble\ninput: []\nassertions: [{type: trace_contains}]", "unknown assertion type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenarioYAML([]byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInputSpec_Kinds(t *testing.T) {
	tests := []struct {
		in   InputSpec
		want []int
	}{
		{InputSpec{Kind: InputSorted, Size: 4}, []int{0, 1, 2, 3}},
		{InputSpec{Kind: InputReversed, Size: 4}, []int{3, 2, 1, 0}},
		{InputSpec{Kind: InputZeros, Size: 3}, []int{0, 0, 0}},
		{InputSpec{Values: []int{5, -1}}, []int{5, -1}},
		{InputSpec{}, []int{}},
	}
	for _, tt := range tests {
		got, err := tt.in.Build()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := InputSpec{Kind: "sawtooth"}.Build()
	assert.Error(t, err)
}

func TestInputSpec_UnmarshalJSON(t *testing.T) {
	var in InputSpec
	require.NoError(t, in.UnmarshalJSON([]byte(` [1, 2, 3]`)))
	assert.Equal(t, InputSpec{Values: []int{1, 2, 3}}, in)

	require.NoError(t, in.UnmarshalJSON([]byte(`{"kind":"random","size":8,"seed":2}`)))
	assert.Equal(t, InputSpec{Kind: InputRandom, Size: 8, Seed: 2}, in)

	assert.Error(t, in.UnmarshalJSON([]byte(`{"kind":"random","length":8}`)))
}

func TestCompileScenario_CUE(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
scenario: {
	name:        "cue_list"
	description: "CUE scenario with list input"
	algorithm:   "selection"
	input: [3, 0, 2]
	filter: ["compare"]
	assertions: [{type: "final_array", values: [0, 2, 3]}]
}
`)
	require.NoError(t, v.Err())

	s, err := CompileScenario(v.LookupPath(cue.ParsePath("scenario")))
	require.NoError(t, err)
	assert.Equal(t, "selection", s.Algorithm)
	assert.Equal(t, []int{3, 0, 2}, s.Input.Values)
	assert.Equal(t, []string{"compare"}, s.Filter)
	require.Len(t, s.Assertions, 1)
	assert.Equal(t, []int{0, 2, 3}, s.Assertions[0].Values)
}

func TestCompileScenario_Missing(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`other: 1`)

	_, err := CompileScenario(v.LookupPath(cue.ParsePath("scenario")))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "scenario", ce.Field)
}

func TestCompileScenario_NotConcrete(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
scenario: {
	name:        string
	description: "x"
	algorithm:   "bubble"
	input: []
	assertions: [{type: "final_sorted"}]
}
`)
	_, err := CompileScenario(v.LookupPath(cue.ParsePath("scenario")))
	assert.Error(t, err)
}

func TestLoadScenario_CUEConstraintViolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
scenario: {
	name:        "big"
	description: "size violates its bound"
	algorithm:   "bubble"
	input: {kind: "zeros", size: 2000 & <=1000}
	assertions: [{type: "final_sorted"}]
}
`), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of bound")
}

func TestLoadScenario_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scenario format")
}

func TestLoadDir(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)

	var names []string
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"bubble_small",
		"cycle_heap",
		"filter_compare",
		"quick_random",
		"radix_zeros",
		"stalin_live",
	}, names)
}

func TestLoadDir_DuplicateNames(t *testing.T) {
	dir := t.TempDir()
	body := []byte("name: same\ndescription: x\nalgorithm: bubble\ninput: []\nassertions: [{type: final_sorted}]\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), body, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), body, 0o644))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate scenario name "same"`)
}
