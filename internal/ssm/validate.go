package ssm

import (
	"context"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/samber/lo"

	"github.com/hemantobora/pubsys/internal/models"
	"github.com/hemantobora/pubsys/internal/output"
)

// ParameterResult is the verdict for one expected parameter
type ParameterResult struct {
	Region        string                  `json:"region"`
	Name          string                  `json:"name"`
	ExpectedValue string                  `json:"expected_value"`
	ActualValue   *string                 `json:"actual_value"`
	Status        models.ValidationStatus `json:"status"`
}

// ParameterResults holds the verdicts of a parameter validation run.
// Regions that could not be queried have an entry in Errors instead.
type ParameterResults struct {
	Results []ParameterResult
	Errors  map[string]error
	regions []string
}

// ValidateRegionParameters classifies every expected parameter against the
// live values of one region
func ValidateRegionParameters(expected, actual Parameters) []ParameterResult {
	results := make([]ParameterResult, 0, len(expected))
	for _, key := range expected.Keys() {
		r := ParameterResult{
			Region:        key.Region,
			Name:          key.Name,
			ExpectedValue: expected[key],
		}
		value, ok := actual[key]
		switch {
		case !ok:
			r.Status = models.StatusMissing
		case value == expected[key]:
			r.ActualValue = aws.String(value)
			r.Status = models.StatusCorrect
		default:
			r.ActualValue = aws.String(value)
			r.Status = models.StatusIncorrect
		}
		results = append(results, r)
	}
	return results
}

// ValidateParameters fetches every expected parameter and classifies it.
// A region that fails to fetch is recorded in Errors and the rest still run.
func ValidateParameters(ctx context.Context, store *Store, expected map[string]Parameters) *ParameterResults {
	all := Flatten(expected)
	fetched := store.FetchByRegion(ctx, all.Keys())

	results := &ParameterResults{
		Errors:  make(map[string]error),
		regions: lo.Keys(expected),
	}
	sort.Strings(results.regions)
	for _, region := range results.regions {
		live, ok := fetched[region]
		if !ok {
			// nothing was requested for this region
			continue
		}
		if live.Err != nil {
			results.Errors[region] = live.Err
			continue
		}
		results.Results = append(results.Results, ValidateRegionParameters(expected[region], live.Value)...)
	}
	return results
}

// ForStatus returns the results with one of the given statuses
func (r *ParameterResults) ForStatus(statuses ...models.ValidationStatus) []ParameterResult {
	out := lo.Filter(r.Results, func(item ParameterResult, _ int) bool {
		return lo.Contains(statuses, item.Status)
	})
	if out == nil {
		out = []ParameterResult{}
	}
	return out
}

// Summary counts verdicts per region
func (r *ParameterResults) Summary() map[string]models.RegionSummary {
	out := make(map[string]models.RegionSummary, len(r.regions))
	for _, region := range r.regions {
		_, failed := r.Errors[region]
		out[region] = models.RegionSummary{Accessible: !failed}
	}
	for _, result := range r.Results {
		s := out[result.Region]
		s.Add(result.Status)
		out[result.Region] = s
	}
	return out
}

// Failed reports whether any region was unreachable or any parameter is not correct
func (r *ParameterResults) Failed() bool {
	if len(r.Errors) > 0 {
		return true
	}
	return lo.SomeBy(r.Results, func(item ParameterResult) bool {
		return item.Status != models.StatusCorrect
	})
}

// Table renders the summary table followed by every parameter that is not correct
func (r *ParameterResults) Table() string {
	var b strings.Builder
	b.WriteString(output.SummaryTable("Parameter validation results", r.Summary()))

	problems := r.ForStatus(models.StatusIncorrect, models.StatusMissing)
	if len(problems) > 0 {
		t := output.NewTable("REGION", "PARAMETER", "STATUS", "EXPECTED", "ACTUAL")
		for _, p := range problems {
			actual := "-"
			if p.ActualValue != nil {
				actual = *p.ActualValue
			}
			t.Row(p.Region, p.Name, string(p.Status), p.ExpectedValue, actual)
		}
		b.WriteString("\n")
		b.WriteString(t.String())
	}
	return b.String()
}
