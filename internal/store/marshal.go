package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/sortstep/internal/ir"
)

// marshalValues converts an array to canonical JSON TEXT for storage.
func marshalValues(values []int) (string, error) {
	if values == nil {
		values = []int{}
	}
	data, err := ir.MarshalCanonical(values)
	if err != nil {
		return "", fmt.Errorf("marshal values: %w", err)
	}
	return string(data), nil
}

// marshalElements converts an event's element list to canonical JSON TEXT.
func marshalElements(elems []ir.ElementEvent) (string, error) {
	items := make([]any, len(elems))
	for i, el := range elems {
		items[i] = el
	}
	data, err := ir.MarshalCanonical(items)
	if err != nil {
		return "", fmt.Errorf("marshal elements: %w", err)
	}
	return string(data), nil
}

// unmarshalValues parses canonical JSON TEXT back to an array.
// Returns an empty (not nil) slice for an empty array.
func unmarshalValues(data string) ([]int, error) {
	values := []int{}
	if data == "" || data == "[]" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("unmarshal values: %w", err)
	}
	return values, nil
}

// unmarshalElements parses canonical JSON TEXT back to an element list.
func unmarshalElements(data string) ([]ir.ElementEvent, error) {
	elems := []ir.ElementEvent{}
	if data == "" || data == "[]" {
		return elems, nil
	}
	if err := json.Unmarshal([]byte(data), &elems); err != nil {
		return nil, fmt.Errorf("unmarshal elements: %w", err)
	}
	return elems, nil
}
