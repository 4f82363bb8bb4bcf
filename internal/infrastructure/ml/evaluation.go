package ml

import (
	"fmt"
	"strings"
)

// ClassMetrics is one line of a classification report.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation summarizes predictions on the held-out split.
type Evaluation struct {
	Classes  []string       `json:"classes"`
	PerClass []ClassMetrics `json:"per_class"`
	Accuracy float64        `json:"accuracy"`
	// Confusion[i][j] counts samples of class i predicted as class j.
	Confusion [][]int `json:"confusion"`
}

// Evaluate compares true and predicted labels over classes.
func Evaluate(classes []string, yTrue, yPred []string) *Evaluation {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	confusion := make([][]int, len(classes))
	for i := range confusion {
		confusion[i] = make([]int, len(classes))
	}
	correct := 0
	for i := range yTrue {
		t, okT := index[yTrue[i]]
		p, okP := index[yPred[i]]
		if okT && okP {
			confusion[t][p]++
		}
		if yTrue[i] == yPred[i] {
			correct++
		}
	}

	ev := &Evaluation{Classes: classes, Confusion: confusion}
	if len(yTrue) > 0 {
		ev.Accuracy = float64(correct) / float64(len(yTrue))
	}
	for k, c := range classes {
		var tp, predicted, support int
		for i := range classes {
			predicted += confusion[i][k]
			support += confusion[k][i]
		}
		tp = confusion[k][k]
		m := ClassMetrics{Label: c, Support: support}
		if predicted > 0 {
			m.Precision = float64(tp) / float64(predicted)
		}
		if support > 0 {
			m.Recall = float64(tp) / float64(support)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		ev.PerClass = append(ev.PerClass, m)
	}
	return ev
}

// Report renders the per-class table and confusion matrix as text.
func (e *Evaluation) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%12s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	total := 0
	for _, m := range e.PerClass {
		fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", m.Label, m.Precision, m.Recall, m.F1, m.Support)
		total += m.Support
	}
	fmt.Fprintf(&b, "\n%12s %10s %10s %10.2f %10d\n\n", "accuracy", "", "", e.Accuracy, total)
	b.WriteString("Confusion matrix:\n")
	for i, row := range e.Confusion {
		fmt.Fprintf(&b, "%12s", e.Classes[i])
		for _, v := range row {
			fmt.Fprintf(&b, " %6d", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
