package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"FinLab/internal/domain/models"
	domrepo "FinLab/internal/domain/repository"
)

const (
	XLSXFile    = "baseline_results.xlsx"
	resultSheet = "results"
)

// XLSXReportExporter renders a report as a spreadsheet with one row per ticker.
type XLSXReportExporter struct {
	dir string
}

func NewXLSXReportExporter(dir string) *XLSXReportExporter {
	return &XLSXReportExporter{dir: dir}
}

func xlsxHeader() []interface{} {
	h := []interface{}{"ticker", "val_acc", "val_f1", "val_auc", "test_acc", "test_f1", "test_auc"}
	for _, rg := range models.Regimes {
		h = append(h, string(rg))
	}
	return h
}

// scoreCell leaves undefined scores blank.
func scoreCell(s models.Score) interface{} {
	if s.IsNaN() {
		return nil
	}
	return float64(s)
}

func (e *XLSXReportExporter) Export(_ context.Context, report *models.BaselineReport) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(resultSheet, "A1", &[]interface{}{"run_id", report.RunID}); err != nil {
		return "", fmt.Errorf("write run id: %w", err)
	}
	header := xlsxHeader()
	if err := f.SetSheetRow(resultSheet, "A3", &header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for i, tr := range report.Results {
		row := []interface{}{
			tr.Ticker,
			scoreCell(tr.Val.Acc), scoreCell(tr.Val.F1), scoreCell(tr.Val.AUC),
			scoreCell(tr.Test.Acc), scoreCell(tr.Test.F1), scoreCell(tr.Test.AUC),
		}
		for _, rg := range models.Regimes {
			row = append(row, tr.RegimeCounts[rg])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(resultSheet, cell, &row); err != nil {
			return "", fmt.Errorf("write %s: %w", tr.Ticker, err)
		}
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(e.dir, XLSXFile)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save xlsx: %w", err)
	}
	return path, nil
}

var _ domrepo.ReportExporter = (*XLSXReportExporter)(nil)
