package ml

import (
	"math"
)

// LogisticRegression is a multinomial (softmax) classifier with L2 regularization.
// C is the inverse regularization strength: the objective is the summed cross-entropy
// plus ||W||²/(2C), minimized by full-batch gradient descent. A LearningRate of zero
// derives a safe step size from the data. Iterations is how many gradient steps the
// last Fit took.
type LogisticRegression struct {
	C            float64     `json:"c"`
	MaxIter      int         `json:"max_iter"`
	LearningRate float64     `json:"learning_rate"`
	Tolerance    float64     `json:"tolerance"`
	Weights      [][]float64 `json:"weights"`
	Intercepts   []float64   `json:"intercepts"`
	Iterations   int         `json:"iterations"`
}

// NewLogisticRegression returns an unfitted model.
func NewLogisticRegression(c float64, maxIter int) *LogisticRegression {
	return &LogisticRegression{C: c, MaxIter: maxIter, Tolerance: 1e-5}
}

// Fit trains on X (rows of equal width) and integer targets y in [0, classes).
func (m *LogisticRegression) Fit(X [][]float64, y []int, classes int) {
	n := len(X)
	if n == 0 {
		return
	}
	d := len(X[0])
	m.Weights = make([][]float64, classes)
	for k := range m.Weights {
		m.Weights[k] = make([]float64, d)
	}
	m.Intercepts = make([]float64, classes)

	gradW := make([][]float64, classes)
	for k := range gradW {
		gradW[k] = make([]float64, d)
	}
	gradB := make([]float64, classes)
	probs := make([]float64, classes)
	reg := 1 / (m.C * float64(n))

	lr := m.LearningRate
	if lr <= 0 {
		// 1/L for the Böhning bound on the softmax loss curvature.
		var maxNorm float64
		for _, x := range X {
			sq := 1.0
			for _, v := range x {
				sq += v * v
			}
			maxNorm = math.Max(maxNorm, sq)
		}
		lr = 1 / (0.5*maxNorm + reg)
	}

	m.Iterations = 0
	for iter := 0; iter < m.MaxIter; iter++ {
		for k := 0; k < classes; k++ {
			for j := range gradW[k] {
				gradW[k][j] = 0
			}
			gradB[k] = 0
		}

		for i, x := range X {
			m.probabilities(x, probs)
			for k := 0; k < classes; k++ {
				diff := probs[k]
				if y[i] == k {
					diff -= 1
				}
				if diff == 0 {
					continue
				}
				gw := gradW[k]
				for j, v := range x {
					if v != 0 {
						gw[j] += diff * v
					}
				}
				gradB[k] += diff
			}
		}

		var maxGrad float64
		for k := 0; k < classes; k++ {
			for j := range gradW[k] {
				g := gradW[k][j]/float64(n) + reg*m.Weights[k][j]
				m.Weights[k][j] -= lr * g
				maxGrad = math.Max(maxGrad, math.Abs(g))
			}
			g := gradB[k] / float64(n)
			m.Intercepts[k] -= lr * g
			maxGrad = math.Max(maxGrad, math.Abs(g))
		}
		m.Iterations = iter + 1
		if maxGrad < m.Tolerance {
			break
		}
	}
}

// probabilities writes the softmax of the class scores of x into dst.
func (m *LogisticRegression) probabilities(x []float64, dst []float64) {
	maxScore := math.Inf(-1)
	for k, w := range m.Weights {
		s := m.Intercepts[k]
		for j, v := range x {
			if v != 0 {
				s += w[j] * v
			}
		}
		dst[k] = s
		if s > maxScore {
			maxScore = s
		}
	}
	var sum float64
	for k := range dst {
		dst[k] = math.Exp(dst[k] - maxScore)
		sum += dst[k]
	}
	for k := range dst {
		dst[k] /= sum
	}
}

// PredictProba returns one probability per class, summing to 1.
func (m *LogisticRegression) PredictProba(x []float64) []float64 {
	out := make([]float64, len(m.Weights))
	m.probabilities(x, out)
	return out
}
