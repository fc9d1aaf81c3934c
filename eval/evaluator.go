// Package eval computes evaluation measures and curves for a binary classifier.
package eval

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Evaluator scores the predictions made for a dataset split.
type Evaluator interface {
	Score(labels []int, scores []float64) (float64, error)
	Name() string
}

type averagePrecisionEvaluator struct{}
type rocAUCEvaluator struct{}
type precisionEvaluator struct{ threshold float64 }
type recallEvaluator struct{ threshold float64 }

// FMeasure computes f-measure, with the beta parameter controlling the precision and recall trade-off.
type FMeasure struct {
	beta      float64
	threshold float64
}

// DecisionThreshold is the score above which the positive class is predicted.
const DecisionThreshold = 0.5

var (
	// AveragePrecisionEvaluator calculates average precision.
	AveragePrecisionEvaluator = averagePrecisionEvaluator{}
	// ROCAUCEvaluator calculates the area under the ROC curve.
	ROCAUCEvaluator = rocAUCEvaluator{}
	// PrecisionEvaluator calculates precision at the decision threshold.
	PrecisionEvaluator = precisionEvaluator{threshold: DecisionThreshold}
	// RecallEvaluator calculates recall at the decision threshold.
	RecallEvaluator = recallEvaluator{threshold: DecisionThreshold}

	// F1Measure is f-measure with beta=1.
	F1Measure = FMeasure{beta: 1, threshold: DecisionThreshold}
	// F05Measure is f-measure with beta=0.5.
	F05Measure = FMeasure{beta: 0.5, threshold: DecisionThreshold}
	// F3Measure is f-measure with beta=3.
	F3Measure = FMeasure{beta: 3, threshold: DecisionThreshold}

	// DefaultEvaluators are reported for every split.
	DefaultEvaluators = []Evaluator{AveragePrecisionEvaluator, ROCAUCEvaluator}
	// ExtendedEvaluators add thresholded measures to the defaults.
	ExtendedEvaluators = []Evaluator{AveragePrecisionEvaluator, ROCAUCEvaluator, PrecisionEvaluator, RecallEvaluator, F1Measure, F05Measure, F3Measure}
)

func (averagePrecisionEvaluator) Name() string {
	return "avg_prec"
}

func (averagePrecisionEvaluator) Score(labels []int, scores []float64) (float64, error) {
	return AveragePrecision(labels, scores)
}

func (rocAUCEvaluator) Name() string {
	return "roc_auc"
}

func (rocAUCEvaluator) Score(labels []int, scores []float64) (float64, error) {
	return ROCAUC(labels, scores)
}

func (precisionEvaluator) Name() string {
	return "precision"
}

func (e precisionEvaluator) Score(labels []int, scores []float64) (float64, error) {
	c, err := thresholdConfusion(labels, scores, e.threshold)
	if err != nil {
		return 0, err
	}
	if c.TP+c.FP == 0 {
		return 0, nil
	}
	return float64(c.TP) / float64(c.TP+c.FP), nil
}

func (recallEvaluator) Name() string {
	return "recall"
}

func (e recallEvaluator) Score(labels []int, scores []float64) (float64, error) {
	c, err := thresholdConfusion(labels, scores, e.threshold)
	if err != nil {
		return 0, err
	}
	if c.TP+c.FN == 0 {
		return 0, nil
	}
	return float64(c.TP) / float64(c.TP+c.FN), nil
}

// Score uses the beta parameter to compute f-measure.
func (f FMeasure) Score(labels []int, scores []float64) (float64, error) {
	precision, err := precisionEvaluator{threshold: f.threshold}.Score(labels, scores)
	if err != nil {
		return 0, err
	}
	recall, err := recallEvaluator{threshold: f.threshold}.Score(labels, scores)
	if err != nil {
		return 0, err
	}
	if precision == 0 || recall == 0 {
		return 0, nil
	}
	betaSquared := math.Pow(f.beta, 2)
	return ((1 + betaSquared) * (precision * recall)) / ((betaSquared * precision) + recall), nil
}

// Name calculates the name of the f-measure with beta parameter.
func (f FMeasure) Name() string {
	return fmt.Sprintf("F%vMeasure", f.beta)
}

// Evaluate scores predictions using the supplied evaluators. Measures that are undefined for the split
// (for example ROC AUC when only one class is present) are left out of the result.
func Evaluate(evaluators []Evaluator, labels []int, scores []float64) (map[string]float64, error) {
	results := make(map[string]float64, len(evaluators))
	for _, evaluator := range evaluators {
		v, err := evaluator.Score(labels, scores)
		if errors.Is(err, ErrSingleClass) {
			log.Warn().Str("measure", evaluator.Name()).Err(err).Msg("measure undefined")
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, evaluator.Name())
		}
		results[evaluator.Name()] = v
	}
	return results, nil
}
