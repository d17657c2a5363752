package utils

import (
	"encoding/json"
	"fmt"
)

// ParseArguments decodes the raw JSON argument string of a tool call.
func ParseArguments(arguments string) (map[string]any, error) {
	var result map[string]any
	if err := json.Unmarshal([]byte(arguments), &result); err != nil {
		return nil, fmt.Errorf("error parsing arguments: %w", err)
	}
	return result, nil
}

// CastAny re-marshals a loosely typed value into a concrete struct.
func CastAny[T any](v any) (*T, error) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error serializing input to JSON: %w", err)
	}

	var result T
	if err = json.Unmarshal(jsonData, &result); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}

	return &result, nil
}
