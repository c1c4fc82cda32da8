package analytics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"netclass-console/internal/model"
)

func TestDenseRank_TiesShareRankWithoutGaps(t *testing.T) {
	counts := []model.SoftwareCount{
		{PCName: "Lab-03", Count: 1},
		{PCName: "Lab-01", Count: 4},
		{PCName: "Lab-02", Count: 4},
		{PCName: "Lab-04", Count: 0},
	}

	rankings := DenseRank(counts)

	require.Len(t, rankings, 4)
	assert.Equal(t, model.SoftwareRanking{PCName: "Lab-01", Count: 4, Ranking: 1}, rankings[0])
	assert.Equal(t, model.SoftwareRanking{PCName: "Lab-02", Count: 4, Ranking: 1}, rankings[1])
	assert.Equal(t, model.SoftwareRanking{PCName: "Lab-03", Count: 1, Ranking: 2}, rankings[2])
	assert.Equal(t, model.SoftwareRanking{PCName: "Lab-04", Count: 0, Ranking: 3}, rankings[3])

	// input left untouched
	assert.Equal(t, "Lab-03", counts[0].PCName)
}

func TestDenseRank_Empty(t *testing.T) {
	assert.Empty(t, DenseRank(nil))
}

func TestRollup_SubtotalsAndGrandTotal(t *testing.T) {
	rows := Rollup([]LocationCount{
		{Floor: 2, LocationName: "Lab B", PCCount: 3},
		{Floor: 1, LocationName: "Lab A", PCCount: 2},
		{Floor: 1, LocationName: "", PCCount: 1},
	})

	require.Len(t, rows, 6)

	kinds := make([]model.RollupKind, len(rows))
	for i, r := range rows {
		kinds[i] = r.Kind()
	}
	assert.Equal(t, []model.RollupKind{
		model.RollupDetail, model.RollupDetail, model.RollupSubtotal,
		model.RollupDetail, model.RollupSubtotal,
		model.RollupGrandTotal,
	}, kinds)

	assert.Equal(t, "General Area", rows[0].LocationLabel())
	assert.Equal(t, "Lab A", rows[1].LocationLabel())
	assert.Equal(t, 3, rows[2].PCCount)
	assert.Equal(t, 3, rows[4].PCCount)
	assert.Equal(t, 6, rows[5].PCCount)
	assert.Equal(t, "Total", rows[5].FloorLabel())
}

func TestRollup_SubtotalEqualsSumOfDetails(t *testing.T) {
	rows := Rollup([]LocationCount{
		{Floor: 1, LocationName: "A", PCCount: 5},
		{Floor: 1, LocationName: "B", PCCount: 7},
		{Floor: 3, LocationName: "C", PCCount: 0},
	})

	sum := 0
	grand := 0
	for _, r := range rows {
		switch r.Kind() {
		case model.RollupDetail:
			sum += r.PCCount
		case model.RollupSubtotal:
			assert.Equal(t, sum, r.PCCount, "subtotal for floor %s", r.FloorLabel())
			grand += sum
			sum = 0
		case model.RollupGrandTotal:
			assert.Equal(t, grand, r.PCCount)
		}
	}
}

func TestRollup_EmptyHasOnlyGrandTotal(t *testing.T) {
	rows := Rollup(nil)
	require.Len(t, rows, 1)
	assert.Equal(t, model.RollupGrandTotal, rows[0].Kind())
	assert.Equal(t, 0, rows[0].PCCount)
}

func TestExportWorkbook(t *testing.T) {
	report := model.AnalyticsReport{
		Rankings:       DenseRank([]model.SoftwareCount{{PCName: "Lab-01", Count: 2}}),
		Rollups:        Rollup([]LocationCount{{Floor: 1, LocationName: "Lab A", PCCount: 1}}),
		SoftwareCounts: []model.SoftwareCount{{PCName: "Lab-01", Count: 2}},
	}

	data, err := ExportWorkbook(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetRankings, SheetRollup, SheetCounts}, f.GetSheetList())

	name, err := f.GetCellValue(SheetRankings, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Lab-01", name)

	rows, err := f.GetRows(SheetRollup)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Floor", "Location", "PCs"}, rows[0])
	assert.Equal(t, []string{"1", "Sub Total", "1"}, rows[2])
	assert.Equal(t, []string{"Total", "Sub Total", "1"}, rows[3])

	count, err := f.GetCellValue(SheetCounts, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}
