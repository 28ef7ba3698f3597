package ami

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ParseExpectedImages decodes a document mapping each region to an image
// definition or a list of them
func ParseExpectedImages(data []byte) (map[string][]ImageDef, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse expected images document: %w", err)
	}
	out := make(map[string][]ImageDef, len(raw))
	for region, value := range raw {
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var images []ImageDef
			if err := json.Unmarshal(trimmed, &images); err != nil {
				return nil, fmt.Errorf("failed to parse expected images for %s: %w", region, err)
			}
			out[region] = images
			continue
		}
		var image ImageDef
		if err := json.Unmarshal(trimmed, &image); err != nil {
			return nil, fmt.Errorf("failed to parse expected image for %s: %w", region, err)
		}
		out[region] = []ImageDef{image}
	}
	return out, nil
}

// RequestedIDs returns the image ids to describe per region, sorted
func RequestedIDs(expected map[string][]ImageDef) map[string][]string {
	out := make(map[string][]string, len(expected))
	for region, images := range expected {
		seen := make(map[string]bool, len(images))
		ids := make([]string, 0, len(images))
		for _, image := range images {
			if image.ID == "" || seen[image.ID] {
				continue
			}
			seen[image.ID] = true
			ids = append(ids, image.ID)
		}
		sort.Strings(ids)
		out[region] = ids
	}
	return out
}

// ExpectedPublic maps every expected image id to whether it should be public
func ExpectedPublic(expected map[string][]ImageDef) map[string]bool {
	out := make(map[string]bool)
	for _, images := range expected {
		for _, image := range images {
			out[image.ID] = image.Public
		}
	}
	return out
}
