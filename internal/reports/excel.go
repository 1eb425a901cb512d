package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXCEL EXPORTER
// ══════════════════════════════════════════════════════════════════════════════

// Sheet names of the class summary workbook.
const (
	sheetOverview = "Overview"
	sheetRankings = "Rankings"
	sheetModules  = "Modules"
)

// ExcelExporter writes the class summary as an Excel workbook for the
// instructors who slice the numbers themselves.
type ExcelExporter struct{}

// NewExcelExporter creates a new ExcelExporter.
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// ClassSummary builds the workbook from all records of one run. The caller
// owns the returned file and its Close.
func (e *ExcelExporter) ClassSummary(records []metrics.CompositeMetricsRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := e.writeOverview(f, records); err != nil {
		return nil, err
	}
	if err := e.writeRankings(f, records); err != nil {
		return nil, err
	}
	if err := e.writeModules(f, records); err != nil {
		return nil, err
	}

	// The default sheet is replaced by Overview.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	idx, err := f.GetSheetIndex(sheetOverview)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)

	return f, nil
}

// WriteClassSummary builds the workbook and saves it at path.
func (e *ExcelExporter) WriteClassSummary(records []metrics.CompositeMetricsRecord, path string) error {
	f, err := e.ClassSummary(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (e *ExcelExporter) writeOverview(f *excelize.File, records []metrics.CompositeMetricsRecord) error {
	if _, err := f.NewSheet(sheetOverview); err != nil {
		return err
	}

	avg := classAverages(records)
	rows := [][]interface{}{
		{"Metric", "Class Average"},
		{"Students", len(records)},
		{"Overall Score", avg.Overall},
		{"Progress Score", avg.Progress},
		{"Engagement Score", avg.Engagement},
		{"Labs Completion Rate", avg.LabsRate},
		{"Assessments Completion Rate", avg.AssessmentsRate},
		{"Assessment Average Score", avg.AssessmentsScore},
	}

	if err := e.writeRows(f, sheetOverview, rows); err != nil {
		return err
	}
	return f.SetColWidth(sheetOverview, "A", "A", 30)
}

func (e *ExcelExporter) writeRankings(f *excelize.File, records []metrics.CompositeMetricsRecord) error {
	if _, err := f.NewSheet(sheetRankings); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Rank", "Student", "Email", "Overall Score", "Progress Score", "Engagement Score", "Total Study Time"},
	}
	for i, rec := range RankByOverallScore(records) {
		rows = append(rows, []interface{}{
			i + 1,
			rec.Name,
			rec.Email,
			rec.Summary.OverallScore,
			rec.Summary.ProgressScore,
			rec.Summary.EngagementScore,
			rec.StudyTime.TotalFormatted,
		})
	}

	if err := e.writeRows(f, sheetRankings, rows); err != nil {
		return err
	}
	return f.SetColWidth(sheetRankings, "B", "C", 28)
}

func (e *ExcelExporter) writeModules(f *excelize.File, records []metrics.CompositeMetricsRecord) error {
	if _, err := f.NewSheet(sheetModules); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Module", "Labs Completion %", "Assessment Avg. Score", "Assessment Completion %"},
	}
	for _, m := range moduleAverages(records) {
		rows = append(rows, []interface{}{
			m.Module,
			m.LabsRate,
			m.AssessmentsScore,
			m.AssessmentsRate,
		})
	}

	return e.writeRows(f, sheetModules, rows)
}

// writeRows writes rows starting at A1 and bolds the header row.
func (e *ExcelExporter) writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if len(rows) == 0 {
		return nil
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}
