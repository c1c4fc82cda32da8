// Package analytics computes the console's aggregate reports outside the
// database and renders them for export.
package analytics

import (
	"sort"

	"netclass-console/internal/model"
)

// DenseRank orders PCs by program count, highest first, and assigns dense
// ranks: equal counts share a rank and the next distinct count gets the next
// integer. Ties are ordered by PC name.
func DenseRank(counts []model.SoftwareCount) []model.SoftwareRanking {
	sorted := make([]model.SoftwareCount, len(counts))
	copy(sorted, counts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].PCName < sorted[j].PCName
	})

	rankings := make([]model.SoftwareRanking, 0, len(sorted))
	rank := 0
	for i, c := range sorted {
		if i == 0 || c.Count != sorted[i-1].Count {
			rank++
		}
		rankings = append(rankings, model.SoftwareRanking{PCName: c.PCName, Count: c.Count, Ranking: rank})
	}
	return rankings
}
