package eval

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrMalformedScores is returned when labels and scores cannot describe a binary classification.
var ErrMalformedScores = errors.New("malformed scores")

// binaryCurve sweeps the decision threshold over every distinct score from highest to lowest and
// returns the cumulative true and false positive counts at each threshold.
func binaryCurve(labels []int, scores []float64) (tps, fps, thresholds []float64, err error) {
	if len(labels) != len(scores) {
		return nil, nil, nil, errors.Wrapf(ErrMalformedScores, "%d labels but %d scores", len(labels), len(scores))
	}
	for i := range labels {
		if labels[i] != 0 && labels[i] != 1 {
			return nil, nil, nil, errors.Wrapf(ErrMalformedScores, "label %d at %d is not binary", labels[i], i)
		}
		if !isFinite(scores[i]) {
			return nil, nil, nil, errors.Wrapf(ErrMalformedScores, "score %v at %d", scores[i], i)
		}
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	var tp, fp float64
	for i, j := range idx {
		if labels[j] == 1 {
			tp++
		} else {
			fp++
		}
		// Only the last observation of a run of equal scores closes a threshold.
		if i == len(idx)-1 || scores[idx[i+1]] != scores[j] {
			tps = append(tps, tp)
			fps = append(fps, fp)
			thresholds = append(thresholds, scores[j])
		}
	}
	return tps, fps, thresholds, nil
}

// PrecisionRecallCurve computes precision and recall for every distinct score used as a decision threshold.
// Thresholds are in decreasing order, so recall is non-decreasing. As with common library implementations the
// precision and recall slices carry one extra trailing point (precision 1, recall 0) that has no threshold.
// When there are no positive labels, recall is 1 at every threshold.
func PrecisionRecallCurve(labels []int, scores []float64) (precision, recall, thresholds []float64, err error) {
	tps, fps, thresholds, err := binaryCurve(labels, scores)
	if err != nil {
		return nil, nil, nil, err
	}

	var positives float64
	if len(tps) > 0 {
		positives = tps[len(tps)-1]
	}

	precision = make([]float64, len(tps)+1)
	recall = make([]float64, len(tps)+1)
	for k := range tps {
		precision[k] = tps[k] / (tps[k] + fps[k])
		if positives == 0 {
			recall[k] = 1
		} else {
			recall[k] = tps[k] / positives
		}
	}
	precision[len(tps)] = 1
	recall[len(tps)] = 0
	return precision, recall, thresholds, nil
}

// PrecisionRecall computes the full resolution precision-recall curve of a set of scores.
func PrecisionRecall(labels []int, scores []float64) (Curve, error) {
	precision, recall, thresholds, err := PrecisionRecallCurve(labels, scores)
	if err != nil {
		return nil, err
	}
	return Zip(precision, recall, thresholds)
}

// AveragePrecision summarises a precision-recall curve as the weighted mean of precision at each threshold,
// using the increase in recall from the previous threshold as the weight.
func AveragePrecision(labels []int, scores []float64) (float64, error) {
	precision, recall, thresholds, err := PrecisionRecallCurve(labels, scores)
	if err != nil {
		return 0, err
	}
	var ap, prev float64
	for k := range thresholds {
		ap += (recall[k] - prev) * precision[k]
		prev = recall[k]
	}
	return ap, nil
}
