// Package export writes the reconciliation report to CSV and XLSX files: a
// header row followed by one row per referral. Nulls are empty cells and
// timestamps are RFC 3339.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mfonekpo/springer-capital/internal/domain"
)

// Sheet names used by WriteXLSX.
const (
	ReportSheet  = "report"
	SummarySheet = "summary"
)

// Cell renders one report value as text.
func Cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// WriteCSV writes rep to w.
func WriteCSV(w io.Writer, rep domain.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ReportColumns); err != nil {
		return fmt.Errorf("export: csv header: %w", err)
	}
	rec := make([]string, len(domain.ReportColumns))
	for i, r := range rep.Rows {
		for j, v := range r.Values() {
			rec[j] = Cell(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export: csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: csv flush: %w", err)
	}
	return nil
}

// WriteCSVFile writes rep to path, creating parent directories.
func WriteCSVFile(path string, rep domain.Report) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("export: close %s: %w", path, cerr)
		}
	}()
	return WriteCSV(f, rep)
}

// WriteXLSX writes rep to path as a workbook with a report sheet and a
// summary sheet holding the valid/invalid counts.
func WriteXLSX(path string, rep domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return fmt.Errorf("export: xlsx: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: xlsx style: %w", err)
	}

	for i, h := range domain.ReportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ReportSheet, cell, h); err != nil {
			return fmt.Errorf("export: xlsx header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(domain.ReportColumns), 1)
	if err := f.SetCellStyle(ReportSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("export: xlsx header style: %w", err)
	}

	for i, r := range rep.Rows {
		for j, v := range r.Values() {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(ReportSheet, cell, xlsxValue(v)); err != nil {
				return fmt.Errorf("export: xlsx row %d: %w", i, err)
			}
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("export: xlsx: %w", err)
	}
	summary := [][]any{
		{"metric", "count"},
		{"referrals", len(rep.Rows)},
		{"valid", rep.Valid},
		{"invalid", rep.Invalid},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("export: xlsx summary: %w", err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", bold); err != nil {
		return fmt.Errorf("export: xlsx summary style: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

// xlsxValue keeps numbers and booleans typed; timestamps are written as text
// so the zone survives.
func xlsxValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return v
}
