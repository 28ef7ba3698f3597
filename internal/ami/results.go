package ami

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/hemantobora/pubsys/internal/models"
	"github.com/hemantobora/pubsys/internal/output"
)

// RegionResults holds the verdicts for one region, or the error that
// prevented the region from being validated
type RegionResults struct {
	Results []ValidationResult
	Err     error
}

// Results holds the outcome of validating images in every region
type Results struct {
	Regions map[string]RegionResults
}

// All returns every result ordered by region then image id
func (r *Results) All() []ValidationResult {
	regions := lo.Keys(r.Regions)
	sort.Strings(regions)
	var out []ValidationResult
	for _, region := range regions {
		out = append(out, r.Regions[region].Results...)
	}
	return out
}

// ForStatus returns the results with one of the given statuses
func (r *Results) ForStatus(statuses ...models.ValidationStatus) []ValidationResult {
	out := lo.Filter(r.All(), func(item ValidationResult, _ int) bool {
		return lo.Contains(statuses, item.Status)
	})
	if out == nil {
		out = []ValidationResult{}
	}
	return out
}

// Summary counts verdicts per region
func (r *Results) Summary() map[string]models.RegionSummary {
	out := make(map[string]models.RegionSummary, len(r.Regions))
	for region, rr := range r.Regions {
		s := models.RegionSummary{Accessible: rr.Err == nil}
		for _, result := range rr.Results {
			s.Add(result.Status)
		}
		out[region] = s
	}
	return out
}

// Errors returns the regions that could not be validated
func (r *Results) Errors() map[string]error {
	out := make(map[string]error)
	for region, rr := range r.Regions {
		if rr.Err != nil {
			out[region] = rr.Err
		}
	}
	return out
}

// Failed reports whether any region failed or any image is not correct
func (r *Results) Failed() bool {
	if len(r.Errors()) > 0 {
		return true
	}
	return lo.SomeBy(r.All(), func(item ValidationResult) bool {
		return item.Status != models.StatusCorrect
	})
}

// Table renders the summary table followed by details of every image that
// is not correct
func (r *Results) Table() string {
	var b strings.Builder
	b.WriteString(output.SummaryTable("Image validation results", r.Summary()))

	problems := r.ForStatus(models.StatusIncorrect, models.StatusMissing)
	if len(problems) > 0 {
		t := output.NewTable("REGION", "IMAGE", "STATUS", "DETAILS")
		for _, p := range problems {
			t.Row(p.Region, p.ID, string(p.Status), describeDifferences(p.Differences))
		}
		b.WriteString("\n")
		b.WriteString(t.String())
	}
	return b.String()
}

func describeDifferences(diffs []FieldDifference) string {
	parts := make([]string, 0, len(diffs))
	for _, d := range diffs {
		parts = append(parts, fmt.Sprintf("%s: expected %s, found %s", d.Field, d.Expected, d.Actual))
	}
	return strings.Join(parts, "\n")
}
