package serving

import (
	// Go Internal Packages
	"fmt"
	"math"
)

// Model predicts a fraud label per feature row.
type Model interface {
	Predict(rows [][]float64) ([]int, error)
}

// LinearModel is a logistic model: a row is fraud when
// sigmoid(weights . row + bias) >= threshold.
type LinearModel struct {
	weights   []float64
	bias      float64
	threshold float64
}

func NewLinearModel(weights []float64, bias, threshold float64) (*LinearModel, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("linear model needs at least one weight")
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("threshold %v outside (0, 1)", threshold)
	}
	w := append([]float64(nil), weights...)
	return &LinearModel{weights: w, bias: bias, threshold: threshold}, nil
}

func (m *LinearModel) Predict(rows [][]float64) ([]int, error) {
	out := make([]int, len(rows))
	for i, row := range rows {
		if len(row) != len(m.weights) {
			return nil, fmt.Errorf("row %d has %d features, expected %d", i, len(row), len(m.weights))
		}
		z := m.bias
		for j, x := range row {
			z += m.weights[j] * x
		}
		if 1/(1+math.Exp(-z)) >= m.threshold {
			out[i] = 1
		}
	}
	return out, nil
}
