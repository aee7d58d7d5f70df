package baseline

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinLab/internal/domain/models"
	domsvc "FinLab/internal/domain/service"
)

func TestAUCMatchesReference(t *testing.T) {
	auc := AUC([]int{0, 0, 1, 1}, []float64{0.1, 0.4, 0.35, 0.8})
	assert.InDelta(t, 0.75, float64(auc), 1e-12)
}

func TestAUCPerfectAndInverted(t *testing.T) {
	assert.InDelta(t, 1.0, float64(AUC([]int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9})), 1e-12)
	assert.InDelta(t, 0.0, float64(AUC([]int{1, 1, 0, 0}, []float64{0.1, 0.2, 0.8, 0.9})), 1e-12)
	assert.InDelta(t, 0.5, float64(AUC([]int{0, 1}, []float64{0.5, 0.5})), 1e-12)
}

func TestEvaluateSingleClassAUCIsNaN(t *testing.T) {
	var m models.EvalMetrics
	require.NotPanics(t, func() {
		m = Evaluate([]int{1, 1, 1}, []float64{0.9, 0.2, 0.6})
	})
	assert.True(t, m.AUC.IsNaN())
	assert.InDelta(t, 2.0/3, float64(m.Acc), 1e-12)
	assert.InDelta(t, 0.8, float64(m.F1), 1e-12) // tp=2 fn=1

	m = Evaluate([]int{0, 0}, []float64{0.1, 0.2})
	assert.True(t, m.AUC.IsNaN())
	assert.Equal(t, models.Score(1), m.Acc)
	assert.Equal(t, models.Score(0), m.F1)
}

func TestEvaluateEmptyIsUndefined(t *testing.T) {
	m := Evaluate(nil, nil)
	assert.True(t, m.Acc.IsNaN())
	assert.True(t, m.F1.IsNaN())
	assert.True(t, m.AUC.IsNaN())
}

func TestEvaluateThresholdInclusive(t *testing.T) {
	m := Evaluate([]int{1, 0, 1, 0}, []float64{0.5, 0.49, 0.2, 0.7})
	// preds 1,0,0,1: tp=1 fp=1 fn=1
	assert.InDelta(t, 0.5, float64(m.Acc), 1e-12)
	assert.InDelta(t, 0.5, float64(m.F1), 1e-12)
}

func separable(seed int64, n int) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		a, b := rng.NormFloat64(), rng.NormFloat64()
		X[i] = []float64{a, b}
		if 2*a-b > 0 {
			y[i] = 1
		}
	}
	return X, y
}

func TestLogisticRegressionLearnsDirection(t *testing.T) {
	X, y := separable(1, 400)
	m := NewLogisticRegression()
	require.NoError(t, m.Fit(X, y))

	w, _, err := m.Coef()
	require.NoError(t, err)
	assert.Greater(t, w[0], 0.0)
	assert.Less(t, w[1], 0.0)

	Xt, yt := separable(2, 200)
	metrics := Evaluate(yt, m.PredictProba(Xt))
	assert.Greater(t, float64(metrics.Acc), 0.9)
	assert.Greater(t, float64(metrics.AUC), 0.95)
}

func TestLogisticRegressionStrongerPenaltyShrinks(t *testing.T) {
	X, y := separable(3, 300)
	loose := NewLogisticRegression(WithC(10))
	tight := NewLogisticRegression(WithC(0.01))
	require.NoError(t, loose.Fit(X, y))
	require.NoError(t, tight.Fit(X, y))

	wl, _, _ := loose.Coef()
	wt, _, _ := tight.Coef()
	assert.Less(t, wt[0], wl[0])
}

func TestLogisticRegressionRejectsBadInput(t *testing.T) {
	m := NewLogisticRegression()
	assert.ErrorIs(t, m.Fit(nil, nil), models.ErrValidation)
	assert.ErrorIs(t, m.Fit([][]float64{{1}, {2}}, []int{1, 1}), models.ErrValidation)
	assert.Error(t, m.Fit([][]float64{{1}, {2, 3}}, []int{0, 1}))
	assert.Nil(t, m.PredictProba([][]float64{{1}}))

	_, _, err := m.Coef()
	assert.ErrorIs(t, err, ErrNotFitted)
}

func labeled(X [][]float64, y []int) []models.LabeledRow {
	out := make([]models.LabeledRow, len(X))
	for i := range X {
		out[i].Ret1D = X[i][0]
		out[i].Ret5D = X[i][1]
		out[i].YDir1D = y[i]
	}
	return out
}

func TestTrainerTrainAndEvaluate(t *testing.T) {
	Xtr, ytr := separable(4, 300)
	Xev, yev := separable(5, 100)
	tr := NewTrainer()

	m, err := tr.TrainAndEvaluate(labeled(Xtr, ytr), labeled(Xev, yev), []string{"ret_1d", "ret_5d"}, models.DefaultTarget)
	require.NoError(t, err)
	assert.Greater(t, float64(m.Acc), 0.9)
	assert.False(t, m.AUC.IsNaN())

	m, err = tr.TrainAndEvaluate(labeled(Xtr, ytr), nil, []string{"ret_1d", "ret_5d"}, models.DefaultTarget)
	require.NoError(t, err)
	assert.True(t, m.Acc.IsNaN())
}

func TestTrainerErrors(t *testing.T) {
	Xtr, ytr := separable(6, 100)
	tr := NewTrainer()

	_, err := tr.TrainAndEvaluate(nil, labeled(Xtr, ytr), []string{"ret_1d"}, models.DefaultTarget)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = tr.TrainAndEvaluate(labeled(Xtr, ytr), nil, []string{"not_a_column"}, models.DefaultTarget)
	assert.ErrorIs(t, err, models.ErrValidation)
}

type constClassifier struct{ p float64 }

func (c constClassifier) Fit([][]float64, []int) error { return nil }

func (c constClassifier) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range out {
		out[i] = c.p
	}
	return out
}

func TestTrainerWithClassifier(t *testing.T) {
	X, y := separable(7, 50)
	tr := NewTrainer(WithClassifier(func() domsvc.Classifier { return constClassifier{p: 0.9} }))
	m, err := tr.TrainAndEvaluate(labeled(X, y), labeled(X, y), []string{"ret_1d"}, models.DefaultTarget)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, float64(m.AUC), 1e-12)
}
