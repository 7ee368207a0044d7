// internal/workers/reporting/facility-map/summary.go
package facilitymap

import (
	"fmt"
	"sort"
	"strings"

	"facility-map/internal/models"
)

type useCount struct {
	use   string
	count int
}

// ComposeSummary reports the facility count and a by-use tally, most frequent
// first. Uses are tallied as given, matching the series grouping. Ties keep
// first-seen order and blank uses are not tallied.
func ComposeSummary(records []models.FacilityRecord) string {
	var counts []useCount
	index := make(map[string]int)
	for _, r := range records {
		use := r.BuildingUse
		if strings.TrimSpace(use) == "" {
			continue
		}
		i, ok := index[use]
		if !ok {
			i = len(counts)
			index[use] = i
			counts = append(counts, useCount{use: use})
		}
		counts[i].count++
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })

	summary := fmt.Sprintf("Showing %d facilities on the map.", len(records))
	if len(counts) == 0 {
		return summary
	}

	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%d %s", c.count, c.use)
	}
	return summary + " By use: " + strings.Join(parts, ", ") + "."
}
