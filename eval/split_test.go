package eval_test

import (
	"context"
	"testing"

	"github.com/hscells/tagpipe/eval"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probabilities(scores []float64) [][]float64 {
	p := make([][]float64, len(scores))
	for i, s := range scores {
		p[i] = []float64{1 - s, s}
	}
	return p
}

func syntheticSplit(name string, n int) eval.Split {
	s := eval.Split{Name: name}
	for i := 0; i < n; i++ {
		score := float64(i) / float64(n)
		label := 0
		if i%3 == 0 {
			label = 1
		}
		s.Labels = append(s.Labels, label)
		s.Probabilities = append(s.Probabilities, []float64{1 - score, score})
	}
	return s
}

func TestEvaluateSplit(t *testing.T) {
	r, err := eval.EvaluateSplit(eval.Split{
		Name:          "test",
		Labels:        labels,
		Probabilities: probabilities(scores),
	}, eval.DefaultEvaluators, eval.NewDownsampler())
	require.NoError(t, err)

	assert.Equal(t, "test", r.Split)
	assert.InDelta(t, 0.8333333, r.Scores["avg_prec"], 1e-6)
	assert.InDelta(t, 0.75, r.Scores["roc_auc"], 1e-9)
	assert.Equal(t, 4, r.Points)
	assert.Equal(t, 1, r.Stride)
	assert.Len(t, r.PRC, 4)
	assert.NotEmpty(t, r.ROC)
	assert.Len(t, r.Pairs, 4)
}

func TestEvaluateSplitDownsamples(t *testing.T) {
	r, err := eval.EvaluateSplit(syntheticSplit("train", 2500), eval.DefaultEvaluators, eval.NewDownsampler())
	require.NoError(t, err)
	assert.Equal(t, 2500, r.Points)
	assert.Equal(t, 3, r.Stride)
	assert.Len(t, r.PRC, 834)
}

func TestEvaluateSplitSingleClass(t *testing.T) {
	r, err := eval.EvaluateSplit(eval.Split{
		Name:          "train",
		Labels:        []int{0, 0, 0},
		Probabilities: probabilities([]float64{0.1, 0.2, 0.3}),
	}, eval.DefaultEvaluators, eval.NewDownsampler())
	require.NoError(t, err)
	assert.Nil(t, r.ROC)
	assert.NotContains(t, r.Scores, "roc_auc")
	assert.Len(t, r.PRC, 3)
}

func TestEvaluateSplitsKeepsOrder(t *testing.T) {
	splits := []eval.Split{syntheticSplit("train", 3000), syntheticSplit("test", 40)}
	reports, err := eval.EvaluateSplits(context.Background(), splits, eval.DefaultEvaluators, eval.NewDownsampler(eval.DownsampleMaxPoints(10)))
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "train", reports[0].Split)
	assert.Len(t, reports[0].PRC, 10)
	assert.Equal(t, "test", reports[1].Split)
	assert.Len(t, reports[1].PRC, 10)
}

func TestEvaluateSplitsPropagatesErrors(t *testing.T) {
	bad := eval.Split{Name: "bad", Labels: []int{0, 1}, Probabilities: probabilities([]float64{0.5})}
	_, err := eval.EvaluateSplits(context.Background(), []eval.Split{syntheticSplit("train", 10), bad}, eval.DefaultEvaluators, eval.NewDownsampler())
	assert.Error(t, err)
}

func TestEvaluateSplitsRejectsZeroMaxPoints(t *testing.T) {
	for _, d := range []eval.Downsampler{{}, eval.NewDownsampler(eval.DownsampleMaxPoints(0))} {
		_, err := eval.EvaluateSplits(context.Background(), []eval.Split{syntheticSplit("train", 10)}, eval.DefaultEvaluators, d)
		assert.True(t, errors.Is(err, eval.ErrInvalidMaxPoints))
	}
}

func TestEvaluateSplitRejectsShortProbabilities(t *testing.T) {
	_, err := eval.EvaluateSplit(eval.Split{
		Name:          "test",
		Labels:        []int{0, 1},
		Probabilities: [][]float64{{0.4, 0.6}, {1}},
	}, eval.DefaultEvaluators, eval.NewDownsampler())
	assert.True(t, errors.Is(err, eval.ErrMalformedScores))
}

func TestSplitScores(t *testing.T) {
	scores, err := eval.Split{Probabilities: probabilities([]float64{0.25, 0.5})}.Scores()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.5}, scores)

	_, err = eval.Split{Probabilities: [][]float64{{}}}.Scores()
	assert.True(t, errors.Is(err, eval.ErrMalformedScores))
}
