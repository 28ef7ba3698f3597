package ami

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/hemantobora/pubsys/internal/models"
)

var errRegionNotDescribed = errors.New("no images were described for region")

// FieldDifference names one field whose expected and actual values differ
type FieldDifference struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// ValidationResult is the verdict for one expected image in one region
type ValidationResult struct {
	ID          string                  `json:"id"`
	Expected    ImageDef                `json:"expected_image_def"`
	Actual      *ImageDef               `json:"actual_image_def"`
	Region      string                  `json:"region"`
	Status      models.ValidationStatus `json:"status"`
	Differences []FieldDifference       `json:"differences,omitempty"`
}

// NewValidationResult classifies expected against actual. Both sides are
// canonicalized first, so a public image never fails on launch permissions.
func NewValidationResult(id string, expected ImageDef, actual *ImageDef, region string) ValidationResult {
	result := ValidationResult{
		ID:       id,
		Expected: expected.Canonical(),
		Region:   region,
	}
	if actual == nil {
		result.Status = models.StatusMissing
		return result
	}
	canonical := actual.Canonical()
	result.Actual = &canonical
	result.Differences = result.Expected.Differences(canonical)
	if len(result.Differences) == 0 {
		result.Status = models.StatusCorrect
	} else {
		result.Status = models.StatusIncorrect
	}
	return result
}

// Differences lists the fields of other that differ from d, comparing the
// canonical forms
func (d ImageDef) Differences(other ImageDef) []FieldDifference {
	a, b := d.Canonical(), other.Canonical()
	var diffs []FieldDifference
	add := func(field, expected, actual string) {
		diffs = append(diffs, FieldDifference{Field: field, Expected: expected, Actual: actual})
	}
	if a.ID != b.ID {
		add("id", a.ID, b.ID)
	}
	if a.Name != b.Name {
		add("name", a.Name, b.Name)
	}
	if a.Public != b.Public {
		add("public", strconv.FormatBool(a.Public), strconv.FormatBool(b.Public))
	}
	if !permissionsEqual(a.LaunchPermissions, b.LaunchPermissions) {
		add("launch_permissions", permissionsString(a.LaunchPermissions), permissionsString(b.LaunchPermissions))
	}
	if a.EnaSupport != b.EnaSupport {
		add("ena_support", strconv.FormatBool(a.EnaSupport), strconv.FormatBool(b.EnaSupport))
	}
	if a.SriovNetSupport != b.SriovNetSupport {
		add("sriov_net_support", a.SriovNetSupport, b.SriovNetSupport)
	}
	return diffs
}

func permissionsString(perms []LaunchPermission) string {
	if perms == nil {
		return "null"
	}
	data, err := json.Marshal(perms)
	if err != nil {
		return fmt.Sprintf("%v", perms)
	}
	return string(data)
}

// fingerprint identifies a result by its full contents
func (r ValidationResult) fingerprint() string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf("%#v", r)
	}
	return string(data)
}

// ValidateRegion classifies every expected image of a region against the
// images described there. Described images nobody expected are not reported.
func ValidateRegion(expected []ImageDef, actual map[string]ImageDef, region string) []ValidationResult {
	seen := make(map[string]bool, len(expected))
	results := make([]ValidationResult, 0, len(expected))
	for _, image := range expected {
		var found *ImageDef
		if a, ok := actual[image.ID]; ok {
			found = &a
		}
		result := NewValidationResult(image.ID, image, found, region)
		fp := result.fingerprint()
		if seen[fp] {
			continue
		}
		seen[fp] = true
		results = append(results, result)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})
	return results
}

// Validate classifies the described images of every region. A region whose
// describe call failed keeps its error and has no results.
func Validate(expected map[string][]ImageDef, described map[string]RegionImages) *Results {
	regions := lo.Union(lo.Keys(expected), lo.Keys(described))
	results := &Results{Regions: make(map[string]RegionResults, len(regions))}
	for _, region := range regions {
		images, ok := described[region]
		switch {
		case !ok:
			results.Regions[region] = RegionResults{Err: &models.DescribeImagesError{Region: region, Cause: errRegionNotDescribed}}
		case images.Err != nil:
			results.Regions[region] = RegionResults{Err: images.Err}
		default:
			results.Regions[region] = RegionResults{
				Results: ValidateRegion(expected[region], images.Images, region),
			}
		}
	}
	return results
}
