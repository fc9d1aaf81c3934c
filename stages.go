// Package tagpipe trains and evaluates a classifier predicting whether a Stack Exchange question
// carries a tag. Each stage reads the files written by the one before it, so stages can be run on
// their own or chained by a Pipeline.
package tagpipe

import (
	"context"
	"path/filepath"
	"time"

	"github.com/hscells/tagpipe/eval"
	"github.com/hscells/tagpipe/featurize"
	"github.com/hscells/tagpipe/learning"
	"github.com/hscells/tagpipe/ledger"
	"github.com/hscells/tagpipe/metrics"
	"github.com/hscells/tagpipe/output"
	"github.com/hscells/tagpipe/params"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Train fits a forest to the train features in featuresDir and saves it to modelPath.
func Train(featuresDir, modelPath string, p params.Train) (*learning.Forest, error) {
	m, err := featurize.LoadMatrix(filepath.Join(featuresDir, featurize.TrainFile))
	if err != nil {
		return nil, err
	}
	log.Info().Int("rows", len(m.Rows)).Int("cols", m.Cols()).Msg("loaded train features")

	f := learning.NewForest(learning.ForestTrees(p.NEstimators), learning.ForestMaxDepth(p.MaxDepth))
	if err := f.Train(m.Dense(), m.Labels()); err != nil {
		return nil, errors.Wrap(err, "training forest")
	}
	if err := learning.SaveForest(modelPath, f); err != nil {
		return nil, err
	}
	log.Info().Str("path", modelPath).Msg("saved model")
	return f, nil
}

// EvaluateConfig configures Evaluate.
type EvaluateConfig struct {
	EvalDir       string
	MaxPoints     int
	ImportanceTop int
	Evaluators    []eval.Evaluator
	LedgerPath    string
	Recorder      *metrics.Recorder
}

// EvalDir sets the directory evaluation files are written to.
func EvalDir(dir string) func(*EvaluateConfig) {
	return func(c *EvaluateConfig) {
		c.EvalDir = dir
	}
}

// MaxPoints bounds the number of points written for each precision-recall curve.
func MaxPoints(n int) func(*EvaluateConfig) {
	return func(c *EvaluateConfig) {
		c.MaxPoints = n
	}
}

// ImportanceTop sets how many of the most important features are plotted. Zero disables the plot.
func ImportanceTop(n int) func(*EvaluateConfig) {
	return func(c *EvaluateConfig) {
		c.ImportanceTop = n
	}
}

// Evaluators sets the measures computed for every split.
func Evaluators(evaluators ...eval.Evaluator) func(*EvaluateConfig) {
	return func(c *EvaluateConfig) {
		c.Evaluators = evaluators
	}
}

// LedgerPath records every evaluation in the ledger database at path.
func LedgerPath(path string) func(*EvaluateConfig) {
	return func(c *EvaluateConfig) {
		c.LedgerPath = path
	}
}

// WithRecorder records scores and row counts.
func WithRecorder(r *metrics.Recorder) func(*EvaluateConfig) {
	return func(c *EvaluateConfig) {
		c.Recorder = r
	}
}

// Evaluation is the outcome of Evaluate.
type Evaluation struct {
	Reports []eval.Report
	Summary output.Summary
	// RunID is the ledger id of the evaluation, empty when no ledger is used.
	RunID string
}

type splitFile struct {
	name string
	file string
}

var splitFiles = []splitFile{{"train", featurize.TrainFile}, {"test", featurize.TestFile}}

// Evaluate scores the model at modelPath on the train and test features in featuresDir and writes
// the downsampled precision-recall curves, ROC curves, confusion pairs, summary, feature importance
// plot and HTML report to the evaluation directory.
func Evaluate(ctx context.Context, modelPath, featuresDir string, options ...func(*EvaluateConfig)) (Evaluation, error) {
	c := EvaluateConfig{
		EvalDir:       "eval",
		MaxPoints:     eval.DefaultMaxPoints,
		ImportanceTop: 30,
		Evaluators:    eval.DefaultEvaluators,
	}
	for _, option := range options {
		option(&c)
	}
	if c.MaxPoints <= 0 {
		return Evaluation{}, errors.Wrapf(eval.ErrInvalidMaxPoints, "%d", c.MaxPoints)
	}

	forest, err := learning.LoadForest(modelPath)
	if err != nil {
		return Evaluation{}, err
	}

	matrices := make([]featurize.Matrix, len(splitFiles))
	splits := make([]eval.Split, len(splitFiles))
	g, gctx := errgroup.WithContext(ctx)
	for i, sf := range splitFiles {
		i, sf := i, sf
		g.Go(func() error {
			m, err := featurize.LoadMatrix(filepath.Join(featuresDir, sf.file))
			if err != nil {
				return err
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := learning.PredictAll(forest, m.Dense())
			if err != nil {
				return errors.Wrap(err, sf.name)
			}
			matrices[i] = m
			splits[i] = eval.Split{Name: sf.name, Labels: m.Labels(), Probabilities: p}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Evaluation{}, err
	}

	reports, err := eval.EvaluateSplits(ctx, splits, c.Evaluators, eval.NewDownsampler(eval.DownsampleMaxPoints(c.MaxPoints)))
	if err != nil {
		return Evaluation{}, err
	}
	summary, err := output.WriteReports(c.EvalDir, reports)
	if err != nil {
		return Evaluation{}, err
	}
	if err := output.WriteReport(output.ReportPath(c.EvalDir), reports); err != nil {
		return Evaluation{}, err
	}
	if err := plotImportance(c, forest, matrices[0].FeatureNames); err != nil {
		return Evaluation{}, err
	}

	e := Evaluation{Reports: reports, Summary: summary}
	if len(c.LedgerPath) > 0 {
		run := ledger.NewRun(modelPath, featuresDir, c.MaxPoints, reports)
		if err := record(ctx, c.LedgerPath, run); err != nil {
			return e, err
		}
		e.RunID = run.ID
	}
	if c.Recorder != nil {
		for i, r := range reports {
			c.Recorder.AddRows("evaluate", r.Split, len(splits[i].Labels))
			for measure, v := range r.Scores {
				c.Recorder.Score(r.Split, measure, v)
			}
		}
	}
	return e, nil
}

func plotImportance(c EvaluateConfig, forest *learning.Forest, names []string) error {
	if c.ImportanceTop == 0 {
		return nil
	}
	if len(names) == 0 {
		log.Warn().Msg("no features, skipping feature importance plot")
		return nil
	}
	imp, err := forest.Importance()
	if err != nil {
		return err
	}
	if len(imp) != len(names) {
		return errors.Errorf("model has %d feature importances but there are %d features", len(imp), len(names))
	}
	path := output.ImportancePath(c.EvalDir)
	if err := output.PlotImportance(path, output.TopImportances(names, imp, c.ImportanceTop)); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("wrote feature importance")
	return nil
}

func record(ctx context.Context, path string, run ledger.Run) error {
	l, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()
	if err := l.Record(ctx, run); err != nil {
		return err
	}
	log.Info().Str("run", run.ID).Str("ledger", path).Msg("recorded run")
	return nil
}

// timed runs f and returns how long it took.
func timed(f func() error) (time.Duration, error) {
	start := time.Now()
	err := f()
	return time.Since(start), err
}
