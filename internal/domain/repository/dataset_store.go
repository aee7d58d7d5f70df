package repository

import (
	"context"
	"errors"

	"FinLab/internal/domain/models"
)

// ErrDatasetNotFound is returned when no dataset has been built yet.
var ErrDatasetNotFound = errors.New("dataset not found")

// DatasetStore persists the concatenated model dataset.
type DatasetStore interface {
	SaveDataset(ctx context.Context, rows []models.FeatureRow) error
	LoadDataset(ctx context.Context) ([]models.FeatureRow, error)
	LoadTicker(ctx context.Context, ticker string) ([]models.FeatureRow, error)
}

// ErrReportNotFound is returned when no baseline report has been written yet.
var ErrReportNotFound = errors.New("report not found")
