package eval

import "github.com/pkg/errors"

// ConfusionPair is the actual and predicted class of one observation.
type ConfusionPair struct {
	Actual    int `json:"actual"`
	Predicted int `json:"predicted"`
}

// Confusion counts the outcomes of a binary prediction.
type Confusion struct {
	TP, FP, TN, FN int
}

// Add counts one observation.
func (c *Confusion) Add(actual, predicted int) {
	switch {
	case actual == 1 && predicted == 1:
		c.TP++
	case actual == 1:
		c.FN++
	case predicted == 1:
		c.FP++
	default:
		c.TN++
	}
}

// Argmax is the index of the largest value; ties resolve to the lowest index.
func Argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// ConfusionPairs predicts the most probable class of each observation.
func ConfusionPairs(labels []int, probabilities [][]float64) ([]ConfusionPair, Confusion, error) {
	var c Confusion
	if len(labels) != len(probabilities) {
		return nil, c, errors.Wrapf(ErrMalformedScores, "%d labels but %d predictions", len(labels), len(probabilities))
	}
	pairs := make([]ConfusionPair, len(labels))
	for i, l := range labels {
		if len(probabilities[i]) == 0 {
			return nil, c, errors.Wrapf(ErrMalformedScores, "no class probabilities at %d", i)
		}
		pairs[i] = ConfusionPair{Actual: l, Predicted: Argmax(probabilities[i])}
		c.Add(pairs[i].Actual, pairs[i].Predicted)
	}
	return pairs, c, nil
}

// thresholdConfusion predicts the positive class for every score above threshold.
func thresholdConfusion(labels []int, scores []float64, threshold float64) (Confusion, error) {
	var c Confusion
	if _, _, _, err := binaryCurve(labels, scores); err != nil {
		return c, err
	}
	for i, l := range labels {
		p := 0
		if scores[i] > threshold {
			p = 1
		}
		c.Add(l, p)
	}
	return c, nil
}
