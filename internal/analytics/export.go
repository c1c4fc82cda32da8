package analytics

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"netclass-console/internal/model"
)

// Sheet names of the exported workbook
const (
	SheetRankings = "Software Ranking"
	SheetRollup   = "PCs by Location"
	SheetCounts   = "Software Count"
)

// XLSXContentType is the MIME type of the exported workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sheet struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]interface{}
}

// ExportWorkbook renders the three analytics result sets as an XLSX workbook.
func ExportWorkbook(report model.AnalyticsReport) ([]byte, error) {
	sheets := []sheet{
		{name: SheetRankings, headers: []string{"Rank", "PC Name", "Programs"}, widths: []float64{8, 30, 12}},
		{name: SheetRollup, headers: []string{"Floor", "Location", "PCs"}, widths: []float64{10, 30, 10}},
		{name: SheetCounts, headers: []string{"PC Name", "Programs"}, widths: []float64{30, 12}},
	}
	for _, r := range report.Rankings {
		sheets[0].rows = append(sheets[0].rows, []interface{}{r.Ranking, r.PCName, r.Count})
	}
	for _, r := range report.Rollups {
		sheets[1].rows = append(sheets[1].rows, []interface{}{r.FloorLabel(), r.LocationLabel(), r.PCCount})
	}
	for _, c := range report.SoftwareCounts {
		sheets[2].rows = append(sheets[2].rows, []interface{}{c.PCName, c.Count})
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create total style: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sh.name, err)
		}

		if err := writeSheet(f, sh, headerStyle); err != nil {
			return nil, err
		}
	}

	// Rollup subtotal and total rows are emphasized.
	for i, r := range report.Rollups {
		if r.Kind() == model.RollupDetail {
			continue
		}
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		end, _ := excelize.CoordinatesToCellName(3, i+2)
		if err := f.SetCellStyle(SheetRollup, start, end, totalStyle); err != nil {
			return nil, fmt.Errorf("failed to style rollup row: %w", err)
		}
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sh sheet, headerStyle int) error {
	for col, header := range sh.headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sh.name, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sh.name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sh.name, name, name, sh.widths[col]); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, values := range sh.rows {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sh.name, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", rowIdx+2, sh.name, err)
		}
	}

	return f.SetPanes(sh.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
