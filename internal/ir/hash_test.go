package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogHashDeterminism(t *testing.T) {
	log := []Event{Compare(0, 1), Swap(0, 1), End()}

	h1, err := LogHash(log)
	require.NoError(t, err)
	h2, err := LogHash([]Event{Compare(0, 1), Swap(0, 1), End()})
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "LogHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestLogHashChangesWithLog(t *testing.T) {
	base := MustLogHash([]Event{Compare(0, 1), End()})

	assert.NotEqual(t, base, MustLogHash([]Event{Compare(1, 0), End()}), "indices matter")
	assert.NotEqual(t, base, MustLogHash([]Event{Compare(0, 1)}), "End matters")
	assert.NotEqual(t, base, MustLogHash([]Event{Swap(0, 1), End()}), "type matters")
}

func TestHashDomainSeparation(t *testing.T) {
	// An empty log and an empty input share canonical bytes "[]" but not identity.
	assert.NotEqual(t, MustLogHash([]Event{}), InputHash([]int{}))
	assert.Equal(t, InputHash([]int{1, 2}), InputHash([]int{1, 2}))
	assert.NotEqual(t, InputHash([]int{1, 2}), InputHash([]int{2, 1}))
}
