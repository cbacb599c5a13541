// Package evaluate measures a fake-probability model against labelled reviews
package evaluate

import (
	"context"
	"sort"

	"reviewguard/internal/core/engine"
	"reviewguard/internal/core/normalize"
)

// Confusion counts predictions with fake as the positive class
type Confusion struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	TN int `json:"tn"`
	FN int `json:"fn"`
}

// Add records one prediction
func (c *Confusion) Add(predFake, actualFake bool) {
	switch {
	case predFake && actualFake:
		c.TP++
	case predFake:
		c.FP++
	case actualFake:
		c.FN++
	default:
		c.TN++
	}
}

// Total is the number of recorded predictions
func (c Confusion) Total() int { return c.TP + c.FP + c.TN + c.FN }

// Accuracy is (TP+TN)/total
func (c Confusion) Accuracy() float64 { return ratio(c.TP+c.TN, c.Total()) }

// Precision is TP/(TP+FP)
func (c Confusion) Precision() float64 { return ratio(c.TP, c.TP+c.FP) }

// Recall is TP/(TP+FN)
func (c Confusion) Recall() float64 { return ratio(c.TP, c.TP+c.FN) }

// F1 is the harmonic mean of precision and recall
func (c Confusion) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// AUC returns the ROC area via the rank-sum statistic; ties count half.
// Returns 0 when either class is absent
func AUC(scores []float64, fake []bool) float64 {
	type pt struct {
		s    float64
		fake bool
	}
	pts := make([]pt, len(scores))
	pos := 0
	for i := range scores {
		pts[i] = pt{scores[i], fake[i]}
		if fake[i] {
			pos++
		}
	}
	neg := len(pts) - pos
	if pos == 0 || neg == 0 {
		return 0
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].s < pts[j].s })

	// average ranks over tie groups, 1-based
	rankSum := 0.0
	for i := 0; i < len(pts); {
		j := i
		for j < len(pts) && pts[j].s == pts[i].s {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			if pts[k].fake {
				rankSum += avg
			}
		}
		i = j
	}
	u := rankSum - float64(pos*(pos+1))/2
	return u / float64(pos*neg)
}

// Result is one scored sample
type Result struct {
	Text      string
	Fake      bool
	Score     float64
	Predicted bool
	Err       error
}

// Report summarizes a run
type Report struct {
	Confusion Confusion `json:"confusion"`
	Threshold float64   `json:"threshold"`
	Accuracy  float64   `json:"accuracy"`
	Precision float64   `json:"precision"`
	Recall    float64   `json:"recall"`
	F1        float64   `json:"f1"`
	AUC       float64   `json:"auc"`
	Skipped   int       `json:"skipped"`
}

// Run scores every sample with m and compares against threshold (inclusive).
// Samples the model cannot score are counted as skipped
func Run(ctx context.Context, m engine.ModelScorer, samples []Sample, threshold float64) (Report, []Result, error) {
	rep := Report{Threshold: threshold}
	results := make([]Result, 0, len(samples))
	var scores []float64
	var labels []bool

	for _, s := range samples {
		if err := ctx.Err(); err != nil {
			return rep, results, err
		}
		v := normalize.Canonical(s.Text)
		p, err := m.Score(ctx, normalize.Text{Value: v, Tokens: normalize.Tokenize(v)})
		r := Result{Text: s.Text, Fake: s.Fake, Score: p, Err: err}
		if err != nil {
			rep.Skipped++
			results = append(results, r)
			continue
		}
		r.Predicted = p >= threshold
		rep.Confusion.Add(r.Predicted, s.Fake)
		scores = append(scores, p)
		labels = append(labels, s.Fake)
		results = append(results, r)
	}

	c := rep.Confusion
	rep.Accuracy, rep.Precision, rep.Recall, rep.F1 = c.Accuracy(), c.Precision(), c.Recall(), c.F1()
	rep.AUC = AUC(scores, labels)
	return rep, results, nil
}
