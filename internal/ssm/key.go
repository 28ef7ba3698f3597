// Package ssm renders, compares, fetches and writes SSM parameters across regions.
package ssm

import (
	"sort"

	"github.com/hemantobora/pubsys/internal/models"
	"github.com/samber/lo"
)

// Key identifies a parameter in one region
type Key struct {
	Region string
	Name   string
}

// NewKey creates a Key
func NewKey(region, name string) Key {
	return Key{Region: region, Name: name}
}

// Parameters maps parameter keys to their values
type Parameters map[Key]string

// KeyDifference returns the writes needed to make have look like want: every
// key of want that is missing from have or holds a different value.
// Keys only present in have are ignored.
func KeyDifference(want, have Parameters) Parameters {
	diff := make(Parameters)
	for key, value := range want {
		if current, ok := have[key]; !ok || current != value {
			diff[key] = value
		}
	}
	return diff
}

// Retarget re-keys source values under their target names. The association
// maps a rendered source name to the target name rendered from the same template.
func Retarget(source Parameters, association map[string]string) (Parameters, error) {
	out := make(Parameters, len(source))
	for key, value := range source {
		target, ok := association[key.Name]
		if !ok {
			return nil, &models.LookupError{Region: key.Region, Name: key.Name, Source: "association"}
		}
		out[NewKey(key.Region, target)] = value
	}
	return out, nil
}

// KeysFor pairs every region with every name
func KeysFor(regions []string, names []string) []Key {
	keys := make([]Key, 0, len(regions)*len(names))
	for _, region := range regions {
		for _, name := range names {
			keys = append(keys, NewKey(region, name))
		}
	}
	return keys
}

// Keys returns the keys of p sorted by region then name
func (p Parameters) Keys() []Key {
	keys := lo.Keys(p)
	SortKeys(keys)
	return keys
}

// ByRegion splits p into one map per region
func (p Parameters) ByRegion() map[string]Parameters {
	out := make(map[string]Parameters)
	for key, value := range p {
		if out[key.Region] == nil {
			out[key.Region] = make(Parameters)
		}
		out[key.Region][key] = value
	}
	return out
}

// SortKeys orders keys by region then name
func SortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Region != keys[j].Region {
			return keys[i].Region < keys[j].Region
		}
		return keys[i].Name < keys[j].Name
	})
}

func groupNames(keys []Key) map[string][]string {
	out := make(map[string][]string)
	seen := make(map[Key]bool, len(keys))
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		out[key.Region] = append(out[key.Region], key.Name)
	}
	for region := range out {
		sort.Strings(out[region])
	}
	return out
}
