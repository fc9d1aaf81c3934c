package tagpipe

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hscells/tagpipe/eval"
	"github.com/hscells/tagpipe/featurize"
	"github.com/hscells/tagpipe/metrics"
	"github.com/hscells/tagpipe/params"
	"github.com/hscells/tagpipe/pipeline"
	"github.com/hscells/tagpipe/prepare"
	"github.com/rs/zerolog/log"
)

// Pipeline contains all the information for running the stages of an experiment.
type Pipeline struct {
	PostsPath   string
	WorkDir     string
	Params      params.Params
	Stages      []pipeline.Stage
	Evaluators  []eval.Evaluator
	CacheDir    string
	LedgerPath  string
	MetricsPath string
	Progress    bool
}

// PipelineParams sets the parameters of every stage.
func PipelineParams(p params.Params) func(*Pipeline) {
	return func(pl *Pipeline) {
		pl.Params = p
	}
}

// PipelineStages limits the pipeline to the given stages. They always run in pipeline order.
func PipelineStages(stages ...pipeline.Stage) func(*Pipeline) {
	return func(pl *Pipeline) {
		pl.Stages = stages
	}
}

// PipelineEvaluators sets the measures computed for every split.
func PipelineEvaluators(evaluators ...eval.Evaluator) func(*Pipeline) {
	return func(pl *Pipeline) {
		pl.Evaluators = evaluators
	}
}

// PipelineTokenCache caches tokens on disk in dir between runs.
func PipelineTokenCache(dir string) func(*Pipeline) {
	return func(pl *Pipeline) {
		pl.CacheDir = dir
	}
}

// PipelineLedger records evaluations in the ledger database at path.
func PipelineLedger(path string) func(*Pipeline) {
	return func(pl *Pipeline) {
		pl.LedgerPath = path
	}
}

// PipelineMetrics writes Prometheus metrics of the run to path.
func PipelineMetrics(path string) func(*Pipeline) {
	return func(pl *Pipeline) {
		pl.MetricsPath = path
	}
}

// PipelineProgress shows a progress bar while preparing posts.
func PipelineProgress(progress bool) func(*Pipeline) {
	return func(pl *Pipeline) {
		pl.Progress = progress
	}
}

// NewPipeline creates a pipeline reading the posts dump at postsPath and writing everything under
// workDir. Additional components are provided via the optional functional arguments.
func NewPipeline(postsPath, workDir string, options ...func(*Pipeline)) Pipeline {
	p := Pipeline{
		PostsPath:  postsPath,
		WorkDir:    workDir,
		Params:     params.Default(),
		Stages:     pipeline.Stages,
		Evaluators: eval.DefaultEvaluators,
	}
	for _, option := range options {
		option(&p)
	}
	return p
}

// DataDir is where prepared posts are written.
func (p Pipeline) DataDir() string {
	return filepath.Join(p.WorkDir, "data", "prepared")
}

// FeaturesDir is where feature matrices are written.
func (p Pipeline) FeaturesDir() string {
	return filepath.Join(p.WorkDir, "data", "features")
}

// ModelPath is where the model is written.
func (p Pipeline) ModelPath() string {
	return filepath.Join(p.WorkDir, "model.gob")
}

// EvalDir is where evaluation files are written.
func (p Pipeline) EvalDir() string {
	return filepath.Join(p.WorkDir, "eval")
}

func (p Pipeline) runs(stage pipeline.Stage) bool {
	for _, s := range p.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// Execute runs the configured stages in order, sending a result for each completed stage and each
// evaluated split. The channel is closed when the pipeline stops; an Error result is the last result
// of a failed run, a Done result the last of a successful one.
func (p Pipeline) Execute(ctx context.Context, c chan pipeline.Result) {
	defer close(c)
	log.Info().Str("work", p.WorkDir).Msg("starting pipeline")

	if err := p.Params.Validate(); err != nil {
		c <- pipeline.Result{Error: err, Type: pipeline.Error}
		return
	}

	recorder := metrics.NewRecorder()
	for _, stage := range pipeline.Stages {
		if !p.runs(stage) {
			continue
		}
		if err := ctx.Err(); err != nil {
			c <- pipeline.Result{Stage: stage, Error: err, Type: pipeline.Error}
			return
		}

		var stageMetrics map[string]float64
		var evaluations []pipeline.Result
		d, err := timed(func() error {
			var err error
			stageMetrics, evaluations, err = p.run(ctx, stage, recorder)
			return err
		})
		if err != nil {
			log.Error().Str("stage", string(stage)).Err(err).Msg("stage failed")
			c <- pipeline.Result{Stage: stage, Error: err, Type: pipeline.Error}
			return
		}
		recorder.Stage(string(stage), d)
		log.Info().Str("stage", string(stage)).Dur("took", d).Msg("stage done")

		for _, r := range evaluations {
			c <- r
		}
		c <- pipeline.Result{Stage: stage, Metrics: stageMetrics, Duration: d, Type: pipeline.StageDone}
	}

	if len(p.MetricsPath) > 0 {
		if err := recorder.WriteTextfile(p.MetricsPath); err != nil {
			c <- pipeline.Result{Error: err, Type: pipeline.Error}
			return
		}
	}
	c <- pipeline.Result{Type: pipeline.Done}
}

// run runs one stage, returning the metrics of the stage and the evaluation of each split.
func (p Pipeline) run(ctx context.Context, stage pipeline.Stage, recorder *metrics.Recorder) (map[string]float64, []pipeline.Result, error) {
	switch stage {
	case pipeline.Prepare:
		stats, err := prepare.File(p.PostsPath, p.DataDir(), p.Params.Prepare, p.Progress)
		if err != nil {
			return nil, nil, err
		}
		recorder.AddRows(string(stage), "train", stats.Train)
		recorder.AddRows(string(stage), "test", stats.Test)
		return map[string]float64{
			"train_rows": float64(stats.Train),
			"test_rows":  float64(stats.Test),
			"skipped":    float64(stats.Skipped),
		}, nil, nil

	case pipeline.Featurize:
		stats, err := featurize.Run(ctx, p.DataDir(), p.FeaturesDir(), p.Params.Featurize, p.CacheDir)
		if err != nil {
			return nil, nil, err
		}
		recorder.AddRows(string(stage), "train", stats.TrainRows)
		recorder.AddRows(string(stage), "test", stats.TestRows)
		return map[string]float64{
			"train_rows": float64(stats.TrainRows),
			"test_rows":  float64(stats.TestRows),
			"cols":       float64(stats.Cols),
		}, nil, nil

	case pipeline.Train:
		if err := os.MkdirAll(p.WorkDir, 0755); err != nil {
			return nil, nil, err
		}
		if _, err := Train(p.FeaturesDir(), p.ModelPath(), p.Params.Train); err != nil {
			return nil, nil, err
		}
		return map[string]float64{"trees": float64(p.Params.Train.NEstimators)}, nil, nil

	case pipeline.Evaluate:
		e, err := Evaluate(ctx, p.ModelPath(), p.FeaturesDir(),
			EvalDir(p.EvalDir()),
			MaxPoints(p.Params.Evaluate.MaxPoints),
			ImportanceTop(p.Params.Evaluate.ImportanceTop),
			Evaluators(p.Evaluators...),
			LedgerPath(p.LedgerPath),
			WithRecorder(recorder))
		if err != nil {
			return nil, nil, err
		}
		results := make([]pipeline.Result, len(e.Reports))
		m := make(map[string]float64)
		for i, r := range e.Reports {
			results[i] = pipeline.Result{Stage: stage, Split: r.Split, Metrics: r.Scores, Type: pipeline.Evaluation}
			m[r.Split+"_prc_points"] = float64(len(r.PRC))
		}
		return m, results, nil
	}
	return nil, nil, nil
}
