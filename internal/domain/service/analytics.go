package service

import (
	"context"

	"FinLab/internal/domain/models"
)

// BarDownloader fetches one ticker's raw daily CSV from a market-data provider.
type BarDownloader interface {
	Download(ctx context.Context, code string) ([]byte, error)
}

// Classifier is a binary classifier over dense feature vectors.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	PredictProba(X [][]float64) []float64
}

// Evaluator fits on a train partition and scores an eval partition.
type Evaluator interface {
	TrainAndEvaluate(train, eval []models.LabeledRow, features []string, target string) (models.EvalMetrics, error)
}
