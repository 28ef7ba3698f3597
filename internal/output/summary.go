package output

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hemantobora/pubsys/internal/models"
)

// SummaryTable renders per-region validation counts, one row per region in
// sorted order, followed by a totals row.
func SummaryTable(title string, summaries map[string]models.RegionSummary) string {
	regions := make([]string, 0, len(summaries))
	for region := range summaries {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	t := NewTable("REGION", "CORRECT", "INCORRECT", "MISSING", "ACCESSIBLE")
	var total models.RegionSummary
	total.Accessible = true
	for _, region := range regions {
		s := summaries[region]
		t.Row(region, strconv.Itoa(s.Correct), strconv.Itoa(s.Incorrect), strconv.Itoa(s.Missing), strconv.FormatBool(s.Accessible))
		total.Correct += s.Correct
		total.Incorrect += s.Incorrect
		total.Missing += s.Missing
		total.Accessible = total.Accessible && s.Accessible
	}
	t.Row("TOTAL", strconv.Itoa(total.Correct), strconv.Itoa(total.Incorrect), strconv.Itoa(total.Missing), strconv.FormatBool(total.Accessible))

	return fmt.Sprintf("%s\n%s", title, t.String())
}
