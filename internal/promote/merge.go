package promote

import (
	"github.com/hemantobora/pubsys/internal/models"
	"github.com/hemantobora/pubsys/internal/ssm"
)

// Merge adds the promoted values to a previously persisted parameter
// document. Every persisted entry is kept and its promoted counterpart is
// added from writeSet; nothing is removed. association maps persisted
// (source) names to target names.
func Merge(persisted map[string]ssm.Parameters, writeSet ssm.Parameters, association map[string]string) (map[string]ssm.Parameters, error) {
	merged := make(map[string]ssm.Parameters, len(persisted))
	for region, params := range persisted {
		out := make(ssm.Parameters, len(params)*2)
		for _, key := range params.Keys() {
			target, ok := association[key.Name]
			if !ok {
				return nil, &models.LookupError{Region: region, Name: key.Name, Source: "association"}
			}
			targetKey := ssm.NewKey(region, target)
			value, ok := writeSet[targetKey]
			if !ok {
				return nil, &models.LookupError{Region: region, Name: target, Source: "write-set"}
			}
			out[targetKey] = value
			out[ssm.NewKey(region, key.Name)] = params[key]
		}
		merged[region] = out
	}
	return merged, nil
}
