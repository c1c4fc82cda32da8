package analytics

import (
	"sort"

	"netclass-console/internal/model"
)

// LocationCount is the number of PCs in one location.
type LocationCount struct {
	Floor        int
	LocationName string
	PCCount      int
}

// Rollup groups location counts by floor. Each floor's detail rows are
// followed by a subtotal row with a nil location name, and a grand total
// row with a nil floor closes the result.
func Rollup(counts []LocationCount) []model.LocationRollupRow {
	sorted := make([]LocationCount, len(counts))
	copy(sorted, counts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Floor != sorted[j].Floor {
			return sorted[i].Floor < sorted[j].Floor
		}
		return sorted[i].LocationName < sorted[j].LocationName
	})

	rows := make([]model.LocationRollupRow, 0, len(sorted)*2+1)
	total := 0
	for i := 0; i < len(sorted); {
		floor := sorted[i].Floor
		subtotal := 0
		for ; i < len(sorted) && sorted[i].Floor == floor; i++ {
			name := sorted[i].LocationName
			rows = append(rows, model.LocationRollupRow{Floor: intPtr(floor), LocationName: &name, PCCount: sorted[i].PCCount})
			subtotal += sorted[i].PCCount
		}
		rows = append(rows, model.LocationRollupRow{Floor: intPtr(floor), PCCount: subtotal})
		total += subtotal
	}
	rows = append(rows, model.LocationRollupRow{PCCount: total})
	return rows
}

func intPtr(v int) *int { return &v }
