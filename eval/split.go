package eval

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Split is the predictions a model made for one named partition of the data.
type Split struct {
	Name          string
	Labels        []int
	Probabilities [][]float64
}

// Scores are the probabilities of the positive class. Every row must hold a probability for both classes.
func (s Split) Scores() ([]float64, error) {
	scores := make([]float64, len(s.Probabilities))
	for i, p := range s.Probabilities {
		if len(p) < 2 {
			return nil, errors.Wrapf(ErrMalformedScores, "%d class probabilities at %d", len(p), i)
		}
		scores[i] = p[1]
	}
	return scores, nil
}

// Report holds everything computed for one split.
type Report struct {
	Split     string
	Scores    map[string]float64
	PRC       Curve
	Points    int
	Stride    int
	ROC       []ROCPoint
	Pairs     []ConfusionPair
	Confusion Confusion
}

// EvaluateSplit computes the measures, the downsampled precision-recall curve, the ROC curve and the
// confusion pairs of a split. The ROC curve is nil when the split has a single class.
func EvaluateSplit(s Split, evaluators []Evaluator, d Downsampler) (Report, error) {
	r := Report{Split: s.Name}
	scores, err := s.Scores()
	if err != nil {
		return r, errors.Wrap(err, s.Name)
	}

	r.Scores, err = Evaluate(evaluators, s.Labels, scores)
	if err != nil {
		return r, errors.Wrap(err, s.Name)
	}

	prc, err := PrecisionRecall(s.Labels, scores)
	if err != nil {
		return r, errors.Wrap(err, s.Name)
	}
	r.Points = len(prc)
	r.Stride, err = Stride(len(prc), d.MaxPoints)
	if err != nil {
		return r, errors.Wrap(err, s.Name)
	}
	r.PRC, err = d.Downsample(prc)
	if err != nil {
		return r, errors.Wrap(err, s.Name)
	}

	roc, err := ROC(s.Labels, scores)
	switch {
	case errors.Is(err, ErrSingleClass):
		log.Warn().Str("split", s.Name).Err(err).Msg("skipping roc curve")
	case err != nil:
		return r, errors.Wrap(err, s.Name)
	default:
		r.ROC = DropIntermediate(roc)
	}

	r.Pairs, r.Confusion, err = ConfusionPairs(s.Labels, s.Probabilities)
	if err != nil {
		return r, errors.Wrap(err, s.Name)
	}

	log.Debug().
		Str("split", s.Name).
		Int("points", r.Points).
		Int("stride", r.Stride).
		Int("kept", len(r.PRC)).
		Msg("downsampled precision-recall curve")
	return r, nil
}

// EvaluateSplits evaluates each split concurrently. Splits share nothing; reports are returned in the
// order of the splits.
func EvaluateSplits(ctx context.Context, splits []Split, evaluators []Evaluator, d Downsampler) ([]Report, error) {
	reports := make([]Report, len(splits))
	g, ctx := errgroup.WithContext(ctx)
	for i := range splits {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := EvaluateSplit(splits[i], evaluators, d)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
