package ssm

import (
	"encoding/json"
	"fmt"
)

// ParseRegionalParameters decodes a document of the form
// {"region": {"parameter-name": "value"}}.
func ParseRegionalParameters(data []byte) (map[string]Parameters, error) {
	var raw map[string]map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse parameters document: %w", err)
	}
	out := make(map[string]Parameters, len(raw))
	for region, values := range raw {
		params := make(Parameters, len(values))
		for name, value := range values {
			params[NewKey(region, name)] = value
		}
		out[region] = params
	}
	return out, nil
}

// MarshalRegionalParameters encodes parameters in the document form read by
// ParseRegionalParameters. Keys are emitted in sorted order.
func MarshalRegionalParameters(params map[string]Parameters) ([]byte, error) {
	raw := make(map[string]map[string]string, len(params))
	for region, values := range params {
		names := make(map[string]string, len(values))
		for key, value := range values {
			names[key.Name] = value
		}
		raw[region] = names
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize parameters document: %w", err)
	}
	return data, nil
}

// Flatten merges per-region parameters into one map
func Flatten(params map[string]Parameters) Parameters {
	out := make(Parameters)
	for _, values := range params {
		for key, value := range values {
			out[key] = value
		}
	}
	return out
}
