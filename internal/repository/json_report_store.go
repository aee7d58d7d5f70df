package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"FinLab/internal/domain/models"
	domrepo "FinLab/internal/domain/repository"
)

// ReportFile is the JSON report file name inside the report directory.
const ReportFile = "baseline_results.json"

// JSONReportStore writes the latest baseline report as indented JSON. Undefined
// scores are written as null.
type JSONReportStore struct {
	dir string
}

func NewJSONReportStore(dir string) *JSONReportStore {
	return &JSONReportStore{dir: dir}
}

// Path is the report file location.
func (s *JSONReportStore) Path() string { return filepath.Join(s.dir, ReportFile) }

func (s *JSONReportStore) SaveReport(_ context.Context, report *models.BaselineReport) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFileAtomic(s.Path(), append(b, '\n'))
}

func (s *JSONReportStore) LatestReport(_ context.Context) (*models.BaselineReport, error) {
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domrepo.ErrReportNotFound
		}
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r models.BaselineReport
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

var _ domrepo.ReportStore = (*JSONReportStore)(nil)
