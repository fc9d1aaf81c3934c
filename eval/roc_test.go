package eval_test

import (
	"testing"

	"github.com/hscells/tagpipe/eval"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestROCAUC(t *testing.T) {
	auc, err := eval.ROCAUC(labels, scores)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, auc, 1e-9)

	auc, err = eval.ROCAUC([]int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, auc, 1e-9)
}

func TestROCEndpoints(t *testing.T) {
	points, err := eval.ROC(labels, scores)
	require.NoError(t, err)
	require.NotEmpty(t, points)

	first, last := points[0], points[len(points)-1]
	assert.Equal(t, 0.0, first.FPR)
	assert.Equal(t, 0.0, first.TPR)
	assert.InDelta(t, 1.8, first.Threshold, 1e-12, "the unreachable threshold is one above the highest score")
	assert.Equal(t, 1.0, last.FPR)
	assert.Equal(t, 1.0, last.TPR)
}

func TestROCSingleClass(t *testing.T) {
	_, err := eval.ROC([]int{1, 1}, []float64{0.2, 0.4})
	assert.True(t, errors.Is(err, eval.ErrSingleClass))

	_, err = eval.ROCAUC([]int{0, 0}, []float64{0.2, 0.4})
	assert.True(t, errors.Is(err, eval.ErrSingleClass))
}

func TestDropIntermediate(t *testing.T) {
	points := []eval.ROCPoint{
		{FPR: 0, TPR: 0, Threshold: 2},
		{FPR: 0, TPR: 0.25, Threshold: 0.9},
		{FPR: 0, TPR: 0.5, Threshold: 0.8},
		{FPR: 0.5, TPR: 0.5, Threshold: 0.4},
		{FPR: 1, TPR: 0.5, Threshold: 0.3},
		{FPR: 1, TPR: 1, Threshold: 0.1},
	}
	got := eval.DropIntermediate(points)
	assert.Equal(t, []eval.ROCPoint{points[0], points[2], points[4], points[5]}, got)
	assert.InDelta(t, eval.AUC(points), eval.AUC(got), 1e-12)
}

func TestDropIntermediateShortCurves(t *testing.T) {
	assert.Empty(t, eval.DropIntermediate(nil))
	two := []eval.ROCPoint{{}, {FPR: 1, TPR: 1}}
	assert.Equal(t, two, eval.DropIntermediate(two))
}

func TestConfusionPairs(t *testing.T) {
	pairs, c, err := eval.ConfusionPairs([]int{1, 0, 1, 0}, [][]float64{{0.2, 0.8}, {0.5, 0.5}, {0.9, 0.1}, {0.1, 0.9}})
	require.NoError(t, err)
	assert.Equal(t, []eval.ConfusionPair{{1, 1}, {0, 0}, {1, 0}, {0, 1}}, pairs)
	assert.Equal(t, eval.Confusion{TP: 1, FP: 1, TN: 1, FN: 1}, c)
}

func TestThresholdedEvaluators(t *testing.T) {
	l := []int{1, 1, 0, 0}
	s := []float64{0.9, 0.4, 0.6, 0.1}

	p, err := eval.PrecisionEvaluator.Score(l, s)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-9)

	r, err := eval.RecallEvaluator.Score(l, s)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, r, 1e-9)

	f, err := eval.F1Measure.Score(l, s)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f, 1e-9)
	assert.Equal(t, "F1Measure", eval.F1Measure.Name())
}

func TestEvaluateSkipsUndefinedMeasures(t *testing.T) {
	results, err := eval.Evaluate(eval.DefaultEvaluators, []int{0, 0}, []float64{0.1, 0.2})
	require.NoError(t, err)
	assert.Contains(t, results, "avg_prec")
	assert.NotContains(t, results, "roc_auc")
}

func TestExtendedEvaluators(t *testing.T) {
	results, err := eval.Evaluate(eval.ExtendedEvaluators, []int{1, 1, 0, 0}, []float64{0.9, 0.8, 0.6, 0.1})
	require.NoError(t, err)
	assert.Len(t, results, 7)
	assert.InDelta(t, 2.0/3.0, results["precision"], 1e-9)
	assert.InDelta(t, 1, results["recall"], 1e-9)
	assert.InDelta(t, 0.8, results["F1Measure"], 1e-9)
	assert.InDelta(t, 0.7142857, results["F0.5Measure"], 1e-6)
	assert.InDelta(t, 0.9523810, results["F3Measure"], 1e-6)
}
