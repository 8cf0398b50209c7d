package export

import (
	"fmt"
	"io"

	"family-finance-go/internal/domain/reports"
	"family-finance-go/internal/domain/transactions"
	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	summarySheet    = "Summary"
	byUserSheet     = "By User"
	byPeriodSheet   = "By Period"
	categoriesSheet = "Categories"

	dateLayout = "2006-01-02"
)

// FileName is the attachment name for a report download.
func FileName(report *reports.Report) string {
	return fmt.Sprintf("report_%s_%s_%s.xlsx", report.Period, report.StartDate.Format(dateLayout), report.EndDate.Format(dateLayout))
}

// WriteReport renders report as an XLSX workbook with one sheet per section.
func WriteReport(w io.Writer, report *reports.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{byUserSheet, byPeriodSheet, categoriesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	sheet := sheetWriter{f: f, bold: bold}

	sheet.rows(summarySheet, []string{"Field", "Value"}, [][]interface{}{
		{"Period", string(report.Period)},
		{"Start date", report.StartDate.Format(dateLayout)},
		{"End date", report.EndDate.Format(dateLayout)},
		{"Total income", report.Overall.TotalIncome},
		{"Total expenses", report.Overall.TotalExpenses},
		{"Net", report.Overall.Net},
		{"Generated at", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
	})

	userRows := make([][]interface{}, 0, len(report.ByUser))
	for _, user := range report.ByUser {
		userRows = append(userRows, []interface{}{user.UserID, user.UserName, user.Summary.TotalIncome, user.Summary.TotalExpenses, user.Summary.Net})
	}
	sheet.rows(byUserSheet, []string{"User ID", "Name", "Income", "Expenses", "Net"}, userRows)

	periodRows := make([][]interface{}, 0, len(report.ByPeriod))
	for _, period := range report.ByPeriod {
		periodRows = append(periodRows, []interface{}{period.Period, period.Start.Format(dateLayout), period.End.Format(dateLayout), period.TotalIncome, period.TotalExpenses, period.Net})
	}
	sheet.rows(byPeriodSheet, []string{"Period", "Start", "End", "Income", "Expenses", "Net"}, periodRows)

	var categoryRows [][]interface{}
	for _, category := range transactions.Categories() {
		if amount, ok := report.Overall.Categories[category]; ok {
			categoryRows = append(categoryRows, []interface{}{string(category), amount})
		}
	}
	sheet.rows(categoriesSheet, []string{"Category", "Expenses"}, categoryRows)

	if sheet.err != nil {
		return sheet.err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// sheetWriter keeps the first error so the row loops stay flat.
type sheetWriter struct {
	f    *excelize.File
	bold int
	err  error
}

func (s *sheetWriter) rows(sheet string, header []string, rows [][]interface{}) {
	if s.err != nil {
		return
	}

	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := s.f.SetSheetRow(sheet, "A1", &values); err != nil {
		s.err = fmt.Errorf("write %s header: %w", sheet, err)
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := s.f.SetCellStyle(sheet, "A1", last, s.bold); err != nil {
		s.err = fmt.Errorf("style %s header: %w", sheet, err)
		return
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := s.f.SetSheetRow(sheet, cell, &row); err != nil {
			s.err = fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
			return
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := s.f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		s.err = fmt.Errorf("size %s columns: %w", sheet, err)
	}
}
