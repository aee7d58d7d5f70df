package baseline

import (
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"FinLab/internal/domain/models"
)

// DecisionThreshold turns a probability into a class: p >= threshold is positive.
const DecisionThreshold = 0.5

// Evaluate scores predicted probabilities against true labels.
//
// An empty set has every metric undefined. A set with one class has an undefined AUC;
// accuracy and F1 are still reported. F1 is zero when there are neither predicted nor
// actual positives.
func Evaluate(yTrue []int, proba []float64) models.EvalMetrics {
	n := len(yTrue)
	if n == 0 || len(proba) != n {
		return models.UndefinedMetrics()
	}

	var tp, fp, fn, correct int
	for i, y := range yTrue {
		pred := 0
		if proba[i] >= DecisionThreshold {
			pred = 1
		}
		switch {
		case pred == 1 && y == 1:
			tp++
		case pred == 1 && y != 1:
			fp++
		case pred == 0 && y == 1:
			fn++
		}
		if pred == y {
			correct++
		}
	}

	m := models.EvalMetrics{
		Acc: models.Score(float64(correct) / float64(n)),
		F1:  0,
		AUC: AUC(yTrue, proba),
	}
	if denom := 2*tp + fp + fn; denom > 0 {
		m.F1 = models.Score(float64(2*tp) / float64(denom))
	}
	return m
}

// AUC is the area under the ROC curve, or NaN when only one class is present.
func AUC(yTrue []int, proba []float64) models.Score {
	var pos, neg int
	for _, y := range yTrue {
		if y == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 || len(proba) != len(yTrue) {
		return models.NaN()
	}

	scores := append([]float64(nil), proba...)
	classes := make([]bool, len(yTrue))
	for i, y := range yTrue {
		classes[i] = y == 1
	}
	stat.SortWeightedLabeled(scores, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, scores, classes, nil)
	return models.Score(integrate.Trapezoidal(fpr, tpr))
}
