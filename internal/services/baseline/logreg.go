package baseline

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"FinLab/internal/domain/models"
	domsvc "FinLab/internal/domain/service"
)

const (
	defaultC       = 1.0
	defaultMaxIter = 2000
	gradTolerance  = 1e-6
)

// ErrNotFitted is returned when predicting before a successful Fit.
var ErrNotFitted = errors.New("classifier not fitted")

// LogisticRegression is an L2-regularised binary logistic regression.
//
// The objective is the mean log-loss plus ||w||^2 / (2*C*n); the intercept is not
// penalised. It is minimised with L-BFGS.
type LogisticRegression struct {
	C       float64
	MaxIter int

	coef      []float64
	intercept float64
}

type Option func(*LogisticRegression)

func WithC(c float64) Option { return func(m *LogisticRegression) { m.C = c } }

func WithMaxIter(n int) Option { return func(m *LogisticRegression) { m.MaxIter = n } }

func NewLogisticRegression(opts ...Option) *LogisticRegression {
	m := &LogisticRegression{C: defaultC, MaxIter: defaultMaxIter}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fit learns the weights. X must be non-empty and rectangular, and y must hold both
// classes.
func (m *LogisticRegression) Fit(X [][]float64, y []int) error {
	n := len(X)
	if n == 0 {
		return models.NewValidationError("train", "empty training set")
	}
	if len(y) != n {
		return fmt.Errorf("fit: %d rows but %d labels", n, len(y))
	}
	d := len(X[0])
	var pos int
	for i, row := range X {
		if len(row) != d {
			return fmt.Errorf("fit: row %d has %d features, want %d", i, len(row), d)
		}
		if y[i] == 1 {
			pos++
		}
	}
	if pos == 0 || pos == n {
		return models.NewValidationError("train", "target has a single class")
	}

	c := m.C
	if c <= 0 {
		c = defaultC
	}
	iters := m.MaxIter
	if iters <= 0 {
		iters = defaultMaxIter
	}
	penalty := 1 / (c * float64(n))

	// params: d weights followed by the intercept
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			w, b := p[:d], p[d]
			var loss float64
			for i, row := range X {
				z := floats.Dot(w, row) + b
				// log(1+e^z) - y*z
				loss += softplus(z) - float64(y[i])*z
			}
			return loss/float64(n) + 0.5*penalty*floats.Dot(w, w)
		},
		Grad: func(grad, p []float64) {
			w, b := p[:d], p[d]
			for j := range grad {
				grad[j] = 0
			}
			for i, row := range X {
				r := sigmoid(floats.Dot(w, row)+b) - float64(y[i])
				for j, v := range row {
					grad[j] += r * v
				}
				grad[d] += r
			}
			for j := 0; j < d; j++ {
				grad[j] = grad[j]/float64(n) + penalty*w[j]
			}
			grad[d] /= float64(n)
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   iters,
		GradientThreshold: gradTolerance,
	}
	res, err := optimize.Minimize(problem, make([]float64, d+1), settings, &optimize.LBFGS{})
	if res == nil {
		return fmt.Errorf("fit: %w", err)
	}
	// a line search that stalls near the optimum still leaves a usable point
	if err != nil && !finiteAll(res.X) {
		return fmt.Errorf("fit: %w", err)
	}

	m.coef = append(m.coef[:0], res.X[:d]...)
	m.intercept = res.X[d]
	return nil
}

// PredictProba returns P(y=1) per row. It returns nil before Fit.
func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
	if m.coef == nil {
		return nil
	}
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = sigmoid(floats.Dot(m.coef, row) + m.intercept)
	}
	return out
}

// Coef returns a copy of the fitted weights and the intercept.
func (m *LogisticRegression) Coef() ([]float64, float64, error) {
	if m.coef == nil {
		return nil, 0, ErrNotFitted
	}
	return append([]float64(nil), m.coef...), m.intercept, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

func finiteAll(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

var _ domsvc.Classifier = (*LogisticRegression)(nil)
