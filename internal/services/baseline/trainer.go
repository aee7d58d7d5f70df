package baseline

import (
	"fmt"

	"FinLab/internal/domain/models"
	domsvc "FinLab/internal/domain/service"
)

// Trainer fits a fresh classifier per call and scores it on an evaluation partition.
type Trainer struct {
	newClassifier func() domsvc.Classifier
}

type TrainerOption func(*Trainer)

// WithClassifier replaces the default logistic regression factory.
func WithClassifier(f func() domsvc.Classifier) TrainerOption {
	return func(t *Trainer) { t.newClassifier = f }
}

func NewTrainer(opts ...TrainerOption) *Trainer {
	t := &Trainer{newClassifier: func() domsvc.Classifier { return NewLogisticRegression() }}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TrainAndEvaluate fits on train and scores eval. Unknown columns and an empty train
// set are errors; an empty eval set yields undefined metrics.
func (t *Trainer) TrainAndEvaluate(train, eval []models.LabeledRow, features []string, target string) (models.EvalMetrics, error) {
	if len(train) == 0 {
		return models.EvalMetrics{}, models.NewValidationError("train", "empty training set")
	}
	Xtr, ytr, err := Matrix(train, features, target)
	if err != nil {
		return models.EvalMetrics{}, err
	}
	Xev, yev, err := Matrix(eval, features, target)
	if err != nil {
		return models.EvalMetrics{}, err
	}

	clf := t.newClassifier()
	if err := clf.Fit(Xtr, ytr); err != nil {
		return models.EvalMetrics{}, fmt.Errorf("fit baseline: %w", err)
	}
	if len(eval) == 0 {
		return models.UndefinedMetrics(), nil
	}
	return Evaluate(yev, clf.PredictProba(Xev)), nil
}

// Matrix extracts the feature matrix and binary target by column name.
func Matrix(rows []models.LabeledRow, features []string, target string) ([][]float64, []int, error) {
	X := make([][]float64, len(rows))
	y := make([]int, len(rows))
	for i, r := range rows {
		x := make([]float64, len(features))
		for j, col := range features {
			v, err := r.Value(col)
			if err != nil {
				return nil, nil, err
			}
			x[j] = v
		}
		X[i] = x
		tv, err := r.Value(target)
		if err != nil {
			return nil, nil, err
		}
		if tv > 0 {
			y[i] = 1
		}
	}
	// validate names even when there are no rows
	if len(rows) == 0 {
		var probe models.FeatureRow
		for _, col := range append(append([]string(nil), features...), target) {
			if _, err := probe.Value(col); err != nil {
				return nil, nil, err
			}
		}
	}
	return X, y, nil
}

var _ domsvc.Evaluator = (*Trainer)(nil)
